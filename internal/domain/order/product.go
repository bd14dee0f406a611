package order

import "github.com/shopspring/decimal"

// Product is a sellable catalog entry. Name is the join key to order items.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PriceTray    decimal.Decimal `json:"priceTray"`
	PricePortion decimal.Decimal `json:"pricePortion"`
}

// ProductInput creates or updates a product. Nil fields are left unchanged
// on update.
type ProductInput struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	PriceTray    *decimal.Decimal `json:"priceTray,omitempty"`
	PricePortion *decimal.Decimal `json:"pricePortion,omitempty"`
}

// Catalog is the ordered product list
type Catalog []Product

// ByName finds a product by exact name
func (c Catalog) ByName(name string) (Product, bool) {
	for _, p := range c {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// ByID finds a product by id
func (c Catalog) ByID(id int64) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// IndexOf returns the column position of the product with the given id, or -1
func (c Catalog) IndexOf(id int64) int {
	for i, p := range c {
		if p.ID == id {
			return i
		}
	}
	return -1
}

package order

import "context"

// Store is the backend of record for orders
type Store interface {
	// ListOrders returns every order visible to the current session
	ListOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, draft Draft) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// ReconcileDailyTarget makes the backend adjust today's orders so the
	// shop's quantity of the product equals the target.
	ReconcileDailyTarget(ctx context.Context, target DailyTarget) error
}

// ProductCatalog lists sellable products
type ProductCatalog interface {
	ListProducts(ctx context.Context) (Catalog, error)
}

// ProductAdmin maintains the catalog
type ProductAdmin interface {
	ProductCatalog
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
)

var _ order.ProductAdmin = (*Client)(nil)

// ListProducts returns the catalog in backend order
func (c *Client) ListProducts(ctx context.Context) (order.Catalog, error) {
	var dtos []productDTO
	if err := c.do(ctx, call{method: http.MethodGet, route: "products", path: "products"}, &dtos); err != nil {
		return nil, err
	}
	catalog := make(order.Catalog, 0, len(dtos))
	for i := range dtos {
		p, err := dtos[i].toDomain()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, p)
	}
	return catalog, nil
}

// CreateProduct adds a product to the catalog
func (c *Client) CreateProduct(ctx context.Context, in order.ProductInput) (*order.Product, error) {
	return c.writeProduct(ctx, call{method: http.MethodPost, route: "products", path: "products", body: in})
}

// UpdateProduct changes the non-nil fields of a product
func (c *Client) UpdateProduct(ctx context.Context, id int64, in order.ProductInput) (*order.Product, error) {
	return c.writeProduct(ctx, call{
		method: http.MethodPut,
		route:  "products/{id}",
		path:   "products/" + strconv.FormatInt(id, 10),
		body:   in,
	})
}

// DeleteProduct removes a product from the catalog
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "products/{id}",
		path:   "products/" + strconv.FormatInt(id, 10),
	}, nil)
}

func (c *Client) writeProduct(ctx context.Context, in call) (*order.Product, error) {
	var dto productDTO
	if err := c.do(ctx, in, &dto); err != nil {
		return nil, err
	}
	p, err := dto.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

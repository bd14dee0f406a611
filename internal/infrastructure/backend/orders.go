package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"go.uber.org/zap"
)

var _ order.Store = (*Client)(nil)

// ListOrders returns the orders visible to the session. Orders violating
// their pricing invariants are kept and logged, since the backend owns them.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var dtos []orderDTO
	if err := c.do(ctx, call{method: http.MethodGet, route: "orders", path: "orders"}, &dtos); err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(dtos))
	for i := range dtos {
		o, err := dtos[i].toDomain(c.location)
		if err != nil {
			return nil, err
		}
		if err := o.Validate(); err != nil {
			c.logger.Warn("backend order breaks pricing invariants", zap.String("order_id", o.ID), zap.Error(err))
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// CreateOrder places an order for the session's shop
func (c *Client) CreateOrder(ctx context.Context, draft order.Draft) (*order.Order, error) {
	var dto orderDTO
	if err := c.do(ctx, call{method: http.MethodPost, route: "orders", path: "orders", body: draft}, &dto); err != nil {
		return nil, err
	}
	o, err := dto.toDomain(c.location)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets the status of one order
func (c *Client) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "orders/{id}/status",
		path:   fmt.Sprintf("orders/%s/status", url.PathEscape(id)),
		query:  url.Values{"newStatus": {status.String()}},
	}, nil)
}

// ReconcileDailyTarget asks the backend to realize a daily target quantity
func (c *Client) ReconcileDailyTarget(ctx context.Context, target order.DailyTarget) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "orders/daily-update",
		path:   "orders/daily-update",
		body:   target,
	}, nil)
}

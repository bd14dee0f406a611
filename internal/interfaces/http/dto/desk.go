package dto

import (
	"cmp"
	"slices"

	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/reconcile"
	"github.com/mehmetnuribasa/boreksan/internal/domain/report"
	"github.com/shopspring/decimal"
)

// LoginRequest is the body of POST /session/login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// StatusRequest is the body of PUT /orders/:id/status
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gte=1"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToDraft converts the request to an order draft
func (r CreateOrderRequest) ToDraft() order.Draft {
	d := order.Draft{Items: make([]order.DraftItem, len(r.Items))}
	for i, it := range r.Items {
		d.Items[i] = order.DraftItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return d
}

// TargetEditRequest is one cell typed into the daily matrix
type TargetEditRequest struct {
	ShopKey        string `json:"shopKey" binding:"required"`
	ProductID      int64  `json:"productId" binding:"required,gt=0"`
	TargetQuantity *int   `json:"targetQuantity" binding:"required,gte=0"`
}

// SnapshotQuery names the matrix snapshot target edits were made on. GET
// /matrix/daily returns it as seq.
type SnapshotQuery struct {
	Seq uint64 `form:"seq" json:"seq" binding:"required,gt=0"`
}

// ToEdits converts the request list to staged edits
func ToEdits(reqs []TargetEditRequest) []desk.Edit {
	edits := make([]desk.Edit, len(reqs))
	for i, r := range reqs {
		edits[i] = desk.Edit{
			Key:    reconcile.Key{ShopKey: r.ShopKey, ProductID: r.ProductID},
			Target: *r.TargetQuantity,
		}
	}
	return edits
}

// PendingEdit is a staged target in responses
type PendingEdit struct {
	ShopKey        string `json:"shopKey"`
	ProductID      int64  `json:"productId"`
	TargetQuantity int    `json:"targetQuantity"`
}

// FromPending lists staged targets in a stable order
func FromPending(pending map[reconcile.Key]int) []PendingEdit {
	out := make([]PendingEdit, 0, len(pending))
	for k, v := range pending {
		out = append(out, PendingEdit{ShopKey: k.ShopKey, ProductID: k.ProductID, TargetQuantity: v})
	}
	slices.SortFunc(out, func(a, b PendingEdit) int {
		return cmp.Or(cmp.Compare(a.ShopKey, b.ShopKey), cmp.Compare(a.ProductID, b.ProductID))
	})
	return out
}

// MatrixResponse is the daily matrix with the operator's unsaved edits.
// Targets only apply to today, so other days are not editable and carry no
// pending edits.
type MatrixResponse struct {
	Matrix   *report.DailyMatrix `json:"matrix"`
	Seq      uint64              `json:"seq"`
	Stale    bool                `json:"stale"`
	Editable bool                `json:"editable"`
	Pending  []PendingEdit       `json:"pending"`
}

// NewMatrixResponse builds the response for view. pending is ignored unless
// the matrix is editable.
func NewMatrixResponse(view *desk.MatrixView, editable bool, pending map[reconcile.Key]int) MatrixResponse {
	resp := MatrixResponse{
		Matrix:   view.Matrix,
		Seq:      view.Seq,
		Stale:    view.Stale,
		Editable: editable,
		Pending:  []PendingEdit{},
	}
	if editable {
		resp.Pending = FromPending(pending)
	}
	return resp
}

// StagedResponse answers PUT /matrix/daily/targets and GET /matrix/daily/plan
type StagedResponse struct {
	Seq     uint64             `json:"seq"`
	Pending []PendingEdit      `json:"pending"`
	Plan    []reconcile.Upsert `json:"plan"`
}

// CreateProductRequest is the body of POST /products
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Description  string          `json:"description" binding:"max=500"`
	PriceTray    decimal.Decimal `json:"priceTray"`
	PricePortion decimal.Decimal `json:"pricePortion"`
}

// ToInput converts the request to a product input
func (r CreateProductRequest) ToInput() order.ProductInput {
	return order.ProductInput{
		Name:         &r.Name,
		Description:  &r.Description,
		PriceTray:    &r.PriceTray,
		PricePortion: &r.PricePortion,
	}
}

// UpdateProductRequest is the body of PUT /products/:id. Omitted fields are unchanged.
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" binding:"omitempty,max=500"`
	PriceTray    *decimal.Decimal `json:"priceTray"`
	PricePortion *decimal.Decimal `json:"pricePortion"`
}

// ToInput converts the request to a product input
func (r UpdateProductRequest) ToInput() order.ProductInput {
	return order.ProductInput{
		Name:         r.Name,
		Description:  r.Description,
		PriceTray:    r.PriceTray,
		PricePortion: r.PricePortion,
	}
}

// NegativePrices lists the price fields below zero
func NegativePrices(tray, portion *decimal.Decimal) []ValidationDetail {
	var details []ValidationDetail
	if tray != nil && tray.IsNegative() {
		details = append(details, ValidationDetail{Field: "priceTray", Message: "Must be greater than or equal to 0"})
	}
	if portion != nil && portion.IsNegative() {
		details = append(details, ValidationDetail{Field: "pricePortion", Message: "Must be greater than or equal to 0"})
	}
	return details
}

package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is one line of an order
type Item struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	SubTotal    decimal.Decimal `json:"subTotal"`
}

// Order is a placed order as reported by the order backend.
// TotalPrice and Items are fixed at creation; only Status changes afterwards.
type Order struct {
	ID           string          `json:"id"`
	ShopID       string          `json:"shopId,omitempty"`
	ShopName     string          `json:"shopName"`
	CustomerName string          `json:"customerName"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	CreatedAt    time.Time       `json:"createdAt"`
	Status       Status          `json:"status"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Items        []Item          `json:"items"`
}

// ShopIdentity returns the display name of the ordering party: the shop name
// when present, otherwise the customer name.
func (o *Order) ShopIdentity() string {
	if name := strings.TrimSpace(o.ShopName); name != "" {
		return name
	}
	return strings.TrimSpace(o.CustomerName)
}

// ShopKey returns the grouping key for the ordering party. A stable shop id
// from the backend wins over the display name.
func (o *Order) ShopKey() string {
	if id := strings.TrimSpace(o.ShopID); id != "" {
		return shopIDPrefix + id
	}
	return o.ShopIdentity()
}

const shopIDPrefix = "id:"

// IsCancelled reports whether the order is excluded from quantities and amounts.
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// Quantity returns the total number of trays across all items
func (o *Order) Quantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Validate checks the creation-time invariants of the order
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_ORDER", fmt.Sprintf("order %s has no items", o.ID))
	}
	sum := decimal.Zero
	for i, item := range o.Items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !item.SubTotal.Equal(expected) {
			return shared.NewDomainError("INVALID_ORDER",
				fmt.Sprintf("order %s item %d: subtotal %s does not equal %d x %s",
					o.ID, i, item.SubTotal, item.Quantity, item.UnitPrice))
		}
		sum = sum.Add(item.SubTotal)
	}
	if !o.TotalPrice.Equal(sum) {
		return shared.NewDomainError("INVALID_ORDER",
			fmt.Sprintf("order %s: total %s does not equal item sum %s", o.ID, o.TotalPrice, sum))
	}
	return nil
}

// DayOf truncates t to midnight of its calendar day in loc
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// PlacedOn reports whether the order was created on the given calendar day in loc.
func (o *Order) PlacedOn(day time.Time, loc *time.Location) bool {
	return DayOf(o.CreatedAt, loc).Equal(DayOf(day, loc))
}

// DailyTarget asks the backend to make a shop's quantity of one product for
// the current day equal TargetQuantity.
type DailyTarget struct {
	ShopName       string `json:"shopName"`
	ProductID      int64  `json:"productId"`
	TargetQuantity int    `json:"targetQuantity"`
}

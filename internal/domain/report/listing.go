package report

import (
	"slices"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// FilterDay returns the orders placed on day, in their original order
func FilterDay(orders []order.Order, day time.Time, loc *time.Location) []order.Order {
	out := make([]order.Order, 0)
	for i := range orders {
		if orders[i].PlacedOn(day, loc) {
			out = append(out, orders[i])
		}
	}
	return out
}

// SortNewestFirst returns a copy of orders sorted by creation time, newest first
func SortNewestFirst(orders []order.Order) []order.Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Summary backs the dashboard counters
type Summary struct {
	Day     time.Time       `json:"day"`
	Orders  int             `json:"orders"`
	Trays   int             `json:"trays"`
	Amount  decimal.Decimal `json:"amount"`
	Waiting int             `json:"waiting"`
}

// Summarize counts the non-cancelled orders and trays of day, and every order
// still WAITING regardless of its day.
func Summarize(orders []order.Order, day time.Time, loc *time.Location) Summary {
	s := Summary{Day: order.DayOf(day, loc), Amount: decimal.Zero}
	for i := range orders {
		o := &orders[i]
		if o.Status == order.StatusWaiting {
			s.Waiting++
		}
		if o.IsCancelled() || !o.PlacedOn(day, loc) {
			continue
		}
		s.Orders++
		s.Trays += o.Quantity()
		s.Amount = s.Amount.Add(o.TotalPrice)
	}
	return s
}

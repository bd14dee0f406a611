package report

import (
	"fmt"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Rollup is a synthetic order merging all of one shop's orders on one day.
// It is never sent to the backend.
type Rollup struct {
	order.Order
	SourceIDs []string `json:"sourceIds"`
}

// rollupHour places the composite order at midday of its calendar day
const rollupHour = 12

// BuildDailyRollup merges the non-cancelled orders of a shop on day. Items are
// merged by product name in first-seen order and keep the first unit price
// seen. The composite is DELIVERED only when every merged order is, and
// WAITING otherwise. ok is false when the shop has no such orders.
func BuildDailyRollup(orders []order.Order, shopKey string, day time.Time, loc *time.Location) (rollup *Rollup, ok bool) {
	day = order.DayOf(day, loc)

	var (
		items    []order.Item
		position = make(map[string]int)
		sources  []string
		total    = decimal.Zero
		allDone  = true
		first    *order.Order
	)
	for i := range orders {
		o := &orders[i]
		if o.ShopKey() != shopKey || o.IsCancelled() || !o.PlacedOn(day, loc) {
			continue
		}
		if first == nil {
			first = o
		}
		sources = append(sources, o.ID)
		total = total.Add(o.TotalPrice)
		if o.Status != order.StatusDelivered {
			allDone = false
		}
		for _, item := range o.Items {
			if p, seen := position[item.ProductName]; seen {
				items[p].Quantity += item.Quantity
				items[p].SubTotal = items[p].SubTotal.Add(item.SubTotal)
				continue
			}
			position[item.ProductName] = len(items)
			items = append(items, item)
		}
	}
	if first == nil {
		return nil, false
	}

	status := order.StatusWaiting
	if allDone {
		status = order.StatusDelivered
	}
	return &Rollup{
		Order: order.Order{
			ID:           fmt.Sprintf("rollup:%s:%s", shopKey, day.Format(time.DateOnly)),
			ShopID:       first.ShopID,
			ShopName:     first.ShopName,
			CustomerName: first.CustomerName,
			Address:      first.Address,
			Phone:        first.Phone,
			CreatedAt:    time.Date(day.Year(), day.Month(), day.Day(), rollupHour, 0, 0, 0, loc),
			Status:       status,
			TotalPrice:   total,
			Items:        items,
		},
		SourceIDs: sources,
	}, true
}

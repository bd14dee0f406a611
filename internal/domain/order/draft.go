package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DraftItem requests a number of trays of one product
type DraftItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Draft is an order that has not been placed yet
type Draft struct {
	Items []DraftItem `json:"items"`
}

// PriceDraft previews the order the backend will create for d. Shop orders are
// always priced per tray.
func PriceDraft(d Draft, catalog Catalog) (*Order, error) {
	if len(d.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "order must contain at least one item")
	}

	o := &Order{Status: StatusWaiting, TotalPrice: decimal.Zero}
	for _, di := range d.Items {
		if di.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("product %d: at least one tray must be ordered", di.ProductID))
		}
		p, ok := catalog.ByID(di.ProductID)
		if !ok {
			return nil, shared.NewDomainError("UNKNOWN_PRODUCT",
				fmt.Sprintf("product %d is not in the catalog", di.ProductID))
		}
		sub := p.PriceTray.Mul(decimal.NewFromInt(int64(di.Quantity)))
		o.Items = append(o.Items, Item{
			ProductName: p.Name,
			Quantity:    di.Quantity,
			UnitPrice:   p.PriceTray,
			SubTotal:    sub,
		})
		o.TotalPrice = o.TotalPrice.Add(sub)
	}
	return o, nil
}

// Cutoff is the local time of day after which no new orders are accepted.
// The zero value disables the check.
type Cutoff struct {
	Hour   int
	Minute int
	set    bool
}

// ParseCutoff parses "HH:MM". An empty string yields a disabled cutoff.
func ParseCutoff(raw string) (Cutoff, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cutoff{}, nil
	}
	hh, mm, ok := strings.Cut(raw, ":")
	if !ok {
		return Cutoff{}, fmt.Errorf("invalid cutoff %q: expected HH:MM", raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return Cutoff{}, fmt.Errorf("invalid cutoff hour in %q", raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return Cutoff{}, fmt.Errorf("invalid cutoff minute in %q", raw)
	}
	return Cutoff{Hour: h, Minute: m, set: true}, nil
}

// Enabled reports whether the cutoff is enforced
func (c Cutoff) Enabled() bool {
	return c.set
}

// String returns the cutoff as HH:MM
func (c Cutoff) String() string {
	if !c.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Check rejects order creation at or after the cutoff on now's local day.
func (c Cutoff) Check(now time.Time, loc *time.Location) error {
	if !c.set {
		return nil
	}
	local := now.In(loc)
	limit := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
	if !local.Before(limit) {
		return shared.NewDomainError("ORDER_CUTOFF_PASSED",
			fmt.Sprintf("orders for today closed at %s", c))
	}
	return nil
}

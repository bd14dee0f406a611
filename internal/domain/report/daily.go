package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DailyRow is one shop's line in the daily matrix
type DailyRow struct {
	ShopKey    string          `json:"shopKey"`
	Shop       string          `json:"shop"`
	Quantities []int           `json:"quantities"`
	Unmatched  Bucket          `json:"unmatched"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int             `json:"orderCount"`
}

// DailyTotals sums every column of the daily matrix
type DailyTotals struct {
	Quantities []int           `json:"quantities"`
	Unmatched  Bucket          `json:"unmatched"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int             `json:"orderCount"`
}

// DailyMatrix is the shop x product grid for one day
type DailyMatrix struct {
	Day     time.Time   `json:"day"`
	Columns []Column    `json:"columns"`
	Rows    []DailyRow  `json:"rows"`
	Totals  DailyTotals `json:"totals"`
}

// BuildDailyMatrix builds the entry grid for day. Every shop that appears
// anywhere in the history gets a row, with zeros when it has no orders that
// day. Cancelled orders are ignored.
func BuildDailyMatrix(orders []order.Order, catalog order.Catalog, day time.Time, loc *time.Location) *DailyMatrix {
	day = order.DayOf(day, loc)
	labels := shopLabels(orders)

	tallies := make(map[string]*tally, len(labels))
	for key := range labels {
		tallies[key] = newTally(catalog)
	}
	for i := range orders {
		o := &orders[i]
		if o.IsCancelled() || !o.PlacedOn(day, loc) {
			continue
		}
		if t, ok := tallies[o.ShopKey()]; ok {
			t.addOrder(o)
		}
	}

	m := &DailyMatrix{
		Day:     day,
		Columns: columnsOf(catalog),
		Rows:    make([]DailyRow, 0, len(labels)),
		Totals: DailyTotals{
			Quantities: make([]int, len(catalog)),
			Unmatched:  Bucket{Amount: decimal.Zero},
			Amount:     decimal.Zero,
		},
	}
	for key, label := range labels {
		t := tallies[key]
		m.Rows = append(m.Rows, DailyRow{
			ShopKey:    key,
			Shop:       label,
			Quantities: t.quantities,
			Unmatched:  t.unmatched,
			Amount:     t.amount,
			OrderCount: t.orders,
		})
		for i, q := range t.quantities {
			m.Totals.Quantities[i] += q
		}
		m.Totals.Unmatched = m.Totals.Unmatched.add(t.unmatched)
		m.Totals.Amount = m.Totals.Amount.Add(t.amount)
		m.Totals.OrderCount += t.orders
	}
	slices.SortFunc(m.Rows, func(a, b DailyRow) int {
		return cmp.Or(cmp.Compare(a.Shop, b.Shop), cmp.Compare(a.ShopKey, b.ShopKey))
	})
	return m
}

// Row returns the row for a shop key
func (m *DailyMatrix) Row(shopKey string) (*DailyRow, bool) {
	for i := range m.Rows {
		if m.Rows[i].ShopKey == shopKey {
			return &m.Rows[i], true
		}
	}
	return nil, false
}

// Column returns the position of a product column, or -1
func (m *DailyMatrix) Column(productID int64) int {
	for i, c := range m.Columns {
		if c.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the effective quantity of a product for a shop on the
// matrix day. ok is false when the shop or product is not in the matrix.
func (m *DailyMatrix) Quantity(shopKey string, productID int64) (qty int, ok bool) {
	row, found := m.Row(shopKey)
	if !found {
		return 0, false
	}
	col := m.Column(productID)
	if col < 0 {
		return 0, false
	}
	return row.Quantities[col], true
}

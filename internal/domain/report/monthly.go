package report

import (
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// MonthlyRow is one calendar day of a shop's monthly report. Rows for days
// after today are Future and carry no values at all, which is different from
// a past day with zero orders.
type MonthlyRow struct {
	Date       time.Time           `json:"date"`
	Future     bool                `json:"future"`
	Quantities []int               `json:"quantities"`
	Unmatched  *Bucket             `json:"unmatched"`
	Amount     decimal.NullDecimal `json:"amount"`
	OrderCount *int                `json:"orderCount"`
}

// MonthlyTotals is the grand-total line: the column-wise sum of every row
type MonthlyTotals struct {
	Quantities    []int             `json:"quantities"`
	ColumnAmounts []decimal.Decimal `json:"columnAmounts"`
	Unmatched     Bucket            `json:"unmatched"`
	Amount        decimal.Decimal   `json:"amount"`
	OrderCount    int               `json:"orderCount"`
}

// MonthlyReport is the day x product grid of one shop for one month
type MonthlyReport struct {
	ShopKey string        `json:"shopKey"`
	Shop    string        `json:"shop"`
	Year    int           `json:"year"`
	Month   time.Month    `json:"month"`
	Columns []Column      `json:"columns"`
	Rows    []MonthlyRow  `json:"rows"`
	Totals  MonthlyTotals `json:"totals"`
}

// BuildMonthlyReport lists every day of the month for the shop identified by
// shopKey. Days strictly after today are left blank.
func BuildMonthlyReport(orders []order.Order, catalog order.Catalog, shopKey string, year int, month time.Month, today time.Time, loc *time.Location) *MonthlyReport {
	today = order.DayOf(today, loc)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	daily := make([]*tally, days)
	for i := range daily {
		daily[i] = newTally(catalog)
	}
	for i := range orders {
		o := &orders[i]
		if o.ShopKey() != shopKey || o.IsCancelled() {
			continue
		}
		local := o.CreatedAt.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		daily[local.Day()-1].addOrder(o)
	}

	r := &MonthlyReport{
		ShopKey: shopKey,
		Shop:    shopLabels(orders)[shopKey],
		Year:    year,
		Month:   month,
		Columns: columnsOf(catalog),
		Rows:    make([]MonthlyRow, days),
		Totals: MonthlyTotals{
			Quantities:    make([]int, len(catalog)),
			ColumnAmounts: make([]decimal.Decimal, len(catalog)),
			Unmatched:     Bucket{Amount: decimal.Zero},
			Amount:        decimal.Zero,
		},
	}
	for i := range r.Totals.ColumnAmounts {
		r.Totals.ColumnAmounts[i] = decimal.Zero
	}

	for d := 0; d < days; d++ {
		date := first.AddDate(0, 0, d)
		if date.After(today) {
			r.Rows[d] = MonthlyRow{Date: date, Future: true}
			continue
		}
		t := daily[d]
		unmatched := t.unmatched
		count := t.orders
		r.Rows[d] = MonthlyRow{
			Date:       date,
			Quantities: t.quantities,
			Unmatched:  &unmatched,
			Amount:     decimal.NewNullDecimal(t.amount),
			OrderCount: &count,
		}

		for c := range catalog {
			r.Totals.Quantities[c] += t.quantities[c]
			r.Totals.ColumnAmounts[c] = r.Totals.ColumnAmounts[c].Add(t.amounts[c])
		}
		r.Totals.Unmatched = r.Totals.Unmatched.add(t.unmatched)
		r.Totals.Amount = r.Totals.Amount.Add(t.amount)
		r.Totals.OrderCount += t.orders
	}
	return r
}

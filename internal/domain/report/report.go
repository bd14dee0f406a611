// Package report folds a flat order history into the daily entry matrix, the
// monthly shop report and the composite daily order. Every function here is
// pure: inputs are never modified.
package report

import (
	"strings"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Column is one product column of a matrix, in catalog order
type Column struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
}

// Bucket collects line items whose product name matches no catalog entry.
// They count toward amounts but have no product column.
type Bucket struct {
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

func (b Bucket) add(other Bucket) Bucket {
	return Bucket{Quantity: b.Quantity + other.Quantity, Amount: b.Amount.Add(other.Amount)}
}

// excludedShop is the operator account, which never appears as a shop
const excludedShop = "admin"

func isExcludedShop(identity string) bool {
	return identity == "" || strings.EqualFold(identity, excludedShop)
}

func columnsOf(catalog order.Catalog) []Column {
	cols := make([]Column, len(catalog))
	for i, p := range catalog {
		cols[i] = Column{ProductID: p.ID, Name: p.Name}
	}
	return cols
}

// tally accumulates item quantities into product columns by exact name.
type tally struct {
	index      map[string]int
	quantities []int
	amounts    []decimal.Decimal
	unmatched  Bucket
	amount     decimal.Decimal
	orders     int
}

func newTally(catalog order.Catalog) *tally {
	t := &tally{
		index:      make(map[string]int, len(catalog)),
		quantities: make([]int, len(catalog)),
		amounts:    make([]decimal.Decimal, len(catalog)),
		unmatched:  Bucket{Amount: decimal.Zero},
		amount:     decimal.Zero,
	}
	for i, p := range catalog {
		if _, dup := t.index[p.Name]; !dup {
			t.index[p.Name] = i
		}
		t.amounts[i] = decimal.Zero
	}
	return t
}

func (t *tally) addOrder(o *order.Order) {
	for _, item := range o.Items {
		if i, ok := t.index[item.ProductName]; ok {
			t.quantities[i] += item.Quantity
			t.amounts[i] = t.amounts[i].Add(item.SubTotal)
			continue
		}
		t.unmatched.Quantity += item.Quantity
		t.unmatched.Amount = t.unmatched.Amount.Add(item.SubTotal)
	}
	t.amount = t.amount.Add(o.TotalPrice)
	t.orders++
}

// shopLabels maps every shop key in the history to its most recent display
// name, skipping the operator account.
func shopLabels(orders []order.Order) map[string]string {
	labels := make(map[string]string)
	latest := make(map[string]time.Time)
	for i := range orders {
		o := &orders[i]
		identity := o.ShopIdentity()
		if isExcludedShop(identity) {
			continue
		}
		key := o.ShopKey()
		if seen, ok := latest[key]; ok && seen.After(o.CreatedAt) {
			continue
		}
		labels[key] = identity
		latest[key] = o.CreatedAt
	}
	return labels
}

// Package reconcile turns operator-entered target quantities into the
// minimal set of daily-target upserts for the order backend.
package reconcile

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/report"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
)

// Key identifies one cell of the daily matrix
type Key struct {
	ShopKey   string `json:"shopKey"`
	ProductID int64  `json:"productId"`
}

// String returns a readable form of the key for logs and error messages
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.ShopKey, k.ProductID)
}

// PendingEdits holds target quantities the operator has typed but not saved.
// It is not safe for concurrent use.
type PendingEdits struct {
	targets map[Key]int
}

// NewPendingEdits creates an empty edit set
func NewPendingEdits() *PendingEdits {
	return &PendingEdits{targets: make(map[Key]int)}
}

// Set stages a target. Negative targets are rejected and never stored.
func (p *PendingEdits) Set(key Key, target int) error {
	if target < 0 {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("target for %s must not be negative, got %d", key, target))
	}
	p.targets[key] = target
	return nil
}

// Get returns the staged target for key
func (p *PendingEdits) Get(key Key) (int, bool) {
	t, ok := p.targets[key]
	return t, ok
}

// Remove drops the staged target for key
func (p *PendingEdits) Remove(key Key) {
	delete(p.targets, key)
}

// Clear drops every staged target
func (p *PendingEdits) Clear() {
	clear(p.targets)
}

// Len returns the number of staged targets
func (p *PendingEdits) Len() int {
	return len(p.targets)
}

// Targets returns a copy of the staged targets
func (p *PendingEdits) Targets() map[Key]int {
	out := make(map[Key]int, len(p.targets))
	for k, v := range p.targets {
		out[k] = v
	}
	return out
}

// Upsert is one planned write
type Upsert struct {
	Key     Key               `json:"key"`
	Current int               `json:"current"`
	Target  order.DailyTarget `json:"target"`
}

// Plan diffs targets against the effective quantities in m, which must be
// the matrix built from the same order snapshot the operator was editing.
// Cells whose target equals the current quantity produce nothing. The result
// follows the matrix row and column order.
func Plan(m *report.DailyMatrix, targets map[Key]int) ([]Upsert, error) {
	type positioned struct {
		row, col int
		upsert   Upsert
	}
	planned := make([]positioned, 0, len(targets))

	for key, target := range targets {
		if target < 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("target for %s must not be negative, got %d", key, target))
		}
		row := slices.IndexFunc(m.Rows, func(r report.DailyRow) bool { return r.ShopKey == key.ShopKey })
		if row < 0 {
			return nil, shared.NewDomainError("UNKNOWN_SHOP", fmt.Sprintf("shop %q is not in the matrix", key.ShopKey))
		}
		col := m.Column(key.ProductID)
		if col < 0 {
			return nil, shared.NewDomainError("UNKNOWN_PRODUCT", fmt.Sprintf("product %d is not in the catalog", key.ProductID))
		}

		current := m.Rows[row].Quantities[col]
		if current == target {
			continue
		}
		planned = append(planned, positioned{
			row: row,
			col: col,
			upsert: Upsert{
				Key:     key,
				Current: current,
				Target: order.DailyTarget{
					ShopName:       m.Rows[row].Shop,
					ProductID:      key.ProductID,
					TargetQuantity: target,
				},
			},
		})
	}

	slices.SortFunc(planned, func(a, b positioned) int {
		return cmp.Or(cmp.Compare(a.row, b.row), cmp.Compare(a.col, b.col))
	})
	out := make([]Upsert, len(planned))
	for i, p := range planned {
		out[i] = p.upsert
	}
	return out, nil
}

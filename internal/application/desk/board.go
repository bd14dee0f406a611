// Package desk holds the operator workflows of the order desk: the order
// board and the services that read from and write through it.
package desk

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is one consistent fetch of orders and products. Snapshots are
// shared between readers and must not be modified.
type Snapshot struct {
	Orders    []order.Order `json:"orders"`
	Products  order.Catalog `json:"products"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Seq       uint64        `json:"seq"`
	// Stale is set when the latest refresh failed and this older snapshot
	// is served in its place.
	Stale bool `json:"stale"`
}

// Find returns the order with the given id
func (s *Snapshot) Find(id string) (*order.Order, bool) {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i], true
		}
	}
	return nil, false
}

// HasShop reports whether any order in the snapshot belongs to shopKey
func (s *Snapshot) HasShop(shopKey string) bool {
	for i := range s.Orders {
		if s.Orders[i].ShopKey() == shopKey {
			return true
		}
	}
	return false
}

// keptSnapshots is how many applied snapshots stay addressable by seq
const keptSnapshots = 8

// Board keeps the latest order snapshot. Every refresh is numbered when it
// starts; a refresh that completes after a later-numbered one has been
// applied is discarded. The last few applied snapshots stay addressable by
// seq so that edits made on a displayed matrix are planned against the
// orders that matrix was built from.
type Board struct {
	store   order.Store
	catalog order.ProductCatalog
	now     func() time.Time
	metrics *metrics.Collectors
	logger  *zap.Logger

	issued  atomic.Uint64
	mu      sync.RWMutex
	current *Snapshot
	history []*Snapshot
}

// BoardOption configures a Board
type BoardOption func(*Board)

// WithClock replaces time.Now
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) {
		b.now = now
	}
}

// WithBoardMetrics records refresh outcomes
func WithBoardMetrics(m *metrics.Collectors) BoardOption {
	return func(b *Board) {
		b.metrics = m
	}
}

// WithBoardLogger sets the logger
func WithBoardLogger(l *zap.Logger) BoardOption {
	return func(b *Board) {
		b.logger = l
	}
}

// NewBoard creates an empty board
func NewBoard(store order.Store, catalog order.ProductCatalog, opts ...BoardOption) *Board {
	b := &Board{
		store:   store,
		catalog: catalog,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Current returns the applied snapshot, if any
func (b *Board) Current() (*Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current, b.current != nil
}

// At returns the applied snapshot numbered seq while it is still kept
func (b *Board) At(seq uint64) (*Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, snap := range b.history {
		if snap.Seq == seq {
			return snap, true
		}
	}
	return nil, false
}

// Refresh fetches orders and products together and applies the result unless
// a newer refresh got there first, in which case the newer snapshot is
// returned. On error the applied snapshot is left untouched.
func (b *Board) Refresh(ctx context.Context) (*Snapshot, error) {
	seq := b.issued.Add(1)

	var (
		orders   []order.Order
		products order.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = b.store.ListOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = b.catalog.ListProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		b.metrics.BoardRefresh(metrics.OutcomeFailure)
		return nil, err
	}

	next := &Snapshot{Orders: orders, Products: products, FetchedAt: b.now(), Seq: seq}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil && b.current.Seq > seq {
		b.metrics.BoardRefresh(metrics.OutcomeStale)
		logger.WithLogger(ctx, b.logger).Debug("discarding stale board refresh",
			zap.Uint64("seq", seq), zap.Uint64("applied_seq", b.current.Seq))
		return b.current, nil
	}
	b.current = next
	b.history = append(b.history, next)
	if len(b.history) > keptSnapshots {
		b.history = slices.Delete(b.history, 0, len(b.history)-keptSnapshots)
	}
	b.metrics.BoardRefresh(metrics.OutcomeApplied)
	return next, nil
}

// Load refreshes the board. When the refresh fails and a snapshot was applied
// before, that snapshot is returned marked Stale; an expired session is never
// papered over.
func (b *Board) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := b.Refresh(ctx)
	if err == nil {
		return snap, nil
	}
	prev, ok := b.Current()
	if !ok || errors.Is(err, shared.ErrSessionExpired) || ctx.Err() != nil {
		return nil, err
	}
	logger.WithLogger(ctx, b.logger).Warn("board refresh failed, serving previous snapshot",
		zap.Uint64("seq", prev.Seq), zap.Error(err))
	stale := *prev
	stale.Stale = true
	return &stale, nil
}

// Ensure returns the applied snapshot, loading one first if the board is empty
func (b *Board) Ensure(ctx context.Context) (*Snapshot, error) {
	if snap, ok := b.Current(); ok {
		return snap, nil
	}
	return b.Refresh(ctx)
}

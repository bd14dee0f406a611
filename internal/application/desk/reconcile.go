package desk

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/reconcile"
	"github.com/mehmetnuribasa/boreksan/internal/domain/report"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Edit is one target typed into the daily matrix
type Edit struct {
	Key    reconcile.Key `json:"key"`
	Target int           `json:"target"`
}

// FailedUpsert is an upsert the backend did not accept
type FailedUpsert struct {
	Upsert reconcile.Upsert `json:"upsert"`
	Reason string           `json:"reason"`
	err    error
}

// BatchError reports a save in which some upserts failed. It matches
// shared.ErrReconcileFailed and every underlying cause.
type BatchError struct {
	Failed []FailedUpsert
	Total  int
}

func (e *BatchError) Error() string {
	keys := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		keys[i] = f.Upsert.Key.String()
	}
	return fmt.Sprintf("%d of %d target updates failed: %s", len(e.Failed), e.Total, strings.Join(keys, ", "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed)+1)
	errs = append(errs, shared.ErrReconcileFailed)
	for _, f := range e.Failed {
		errs = append(errs, f.err)
	}
	return errs
}

// SaveResult describes a finished save
type SaveResult struct {
	Applied []reconcile.Upsert `json:"applied"`
	Failed  []FailedUpsert     `json:"failed"`

	// Seq numbers the snapshot refetched after the batch, zero if that failed
	Seq      uint64    `json:"seq"`
	Snapshot *Snapshot `json:"-"`
}

// ReconcileService owns the operator's pending target edits and saves them
// as a batch of daily-target upserts.
type ReconcileService struct {
	store       order.Store
	board       *Board
	loc         *time.Location
	now         func() time.Time
	maxParallel int
	metrics     *metrics.Collectors
	logger      *zap.Logger

	mu    sync.Mutex
	edits *reconcile.PendingEdits
}

// ReconcileConfig configures a ReconcileService
type ReconcileConfig struct {
	Location    *time.Location
	MaxParallel int
	Now         func() time.Time
	Metrics     *metrics.Collectors
	Logger      *zap.Logger
}

// NewReconcileService creates a ReconcileService with no pending edits
func NewReconcileService(store order.Store, board *Board, cfg ReconcileConfig) *ReconcileService {
	s := &ReconcileService{
		store:       store,
		board:       board,
		loc:         cfg.Location,
		now:         cfg.Now,
		maxParallel: cfg.MaxParallel,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		edits:       reconcile.NewPendingEdits(),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Stage records edits made on the matrix built from snapshot seq, after
// checking them against that matrix. Either every edit is staged or, on the
// first invalid one, none is.
func (s *ReconcileService) Stage(seq uint64, edits []Edit) error {
	for _, e := range edits {
		if e.Target < 0 {
			return shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("target for %s must not be negative, got %d", e.Key, e.Target))
		}
	}
	snap, err := s.snapshot(seq)
	if err != nil {
		return err
	}
	m := s.matrix(snap)
	for _, e := range edits {
		if _, ok := m.Row(e.Key.ShopKey); !ok {
			return shared.NewDomainError("UNKNOWN_SHOP", fmt.Sprintf("shop %q is not in the matrix", e.Key.ShopKey))
		}
		if m.Column(e.Key.ProductID) < 0 {
			return shared.NewDomainError("UNKNOWN_PRODUCT", fmt.Sprintf("product %d is not in the catalog", e.Key.ProductID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edits {
		if err := s.edits.Set(e.Key, e.Target); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every pending edit
func (s *ReconcileService) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits.Clear()
}

// Pending returns a copy of the pending edits
func (s *ReconcileService) Pending() map[reconcile.Key]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edits.Targets()
}

// Preview plans the pending edits against snapshot seq without writing
func (s *ReconcileService) Preview(seq uint64) ([]reconcile.Upsert, error) {
	snap, err := s.snapshot(seq)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return reconcile.Plan(s.matrix(snap), s.edits.Targets())
}

// Save plans the pending edits against snapshot seq, the one the operator's
// matrix was built from, issues one upsert per changed cell and waits for all
// of them. Edits of accepted upserts are dropped, failed ones stay pending.
// The board is refetched even after a partial failure.
func (s *ReconcileService) Save(ctx context.Context, seq uint64) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(seq)
	if err != nil {
		return nil, err
	}
	plan, err := reconcile.Plan(s.matrix(snap), s.edits.Targets())
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		s.edits.Clear()
		return nil, shared.ErrNoChanges
	}

	errs := make([]error, len(plan))
	var g errgroup.Group
	if s.maxParallel > 0 {
		g.SetLimit(s.maxParallel)
	}
	for i, u := range plan {
		g.Go(func() error {
			errs[i] = s.store.ReconcileDailyTarget(ctx, u.Target)
			return nil
		})
	}
	_ = g.Wait()

	log := logger.WithLogger(ctx, s.logger)
	result := &SaveResult{}
	for i, u := range plan {
		s.metrics.Upsert(errs[i] == nil)
		if errs[i] != nil {
			log.Warn("daily target upsert failed", zap.Stringer("key", u.Key), zap.Error(errs[i]))
			result.Failed = append(result.Failed, FailedUpsert{Upsert: u, Reason: errs[i].Error(), err: errs[i]})
			continue
		}
		s.edits.Remove(u.Key)
		result.Applied = append(result.Applied, u)
	}
	// cells already at their target were no-ops and are settled too
	for key := range s.edits.Targets() {
		if !planned(plan, key) {
			s.edits.Remove(key)
		}
	}
	log.Info("daily targets saved", zap.Int("applied", len(result.Applied)), zap.Int("failed", len(result.Failed)))

	refreshed, refreshErr := s.board.Refresh(ctx)
	if refreshErr == nil {
		result.Snapshot = refreshed
		result.Seq = refreshed.Seq
	}
	if len(result.Failed) > 0 {
		if refreshErr != nil {
			log.Warn("refetch after partial save failed", zap.Error(refreshErr))
		}
		return result, &BatchError{Failed: result.Failed, Total: len(plan)}
	}
	if refreshErr != nil {
		return result, refreshErr
	}
	return result, nil
}

// snapshot returns the kept board snapshot numbered seq
func (s *ReconcileService) snapshot(seq uint64) (*Snapshot, error) {
	snap, ok := s.board.At(seq)
	if !ok {
		return nil, fmt.Errorf("matrix %d is no longer kept: %w", seq, shared.ErrSnapshotChanged)
	}
	return snap, nil
}

func (s *ReconcileService) matrix(snap *Snapshot) *report.DailyMatrix {
	return report.BuildDailyMatrix(snap.Orders, snap.Products, s.now(), s.loc)
}

func planned(plan []reconcile.Upsert, key reconcile.Key) bool {
	for _, u := range plan {
		if u.Key == key {
			return true
		}
	}
	return false
}

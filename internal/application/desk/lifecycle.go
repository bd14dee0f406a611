package desk

import (
	"context"
	"fmt"
	"sync"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LifecycleService applies operator status changes. Each change is a status
// write followed by a full refetch of the board.
type LifecycleService struct {
	store  order.Store
	board  *Board
	logger *zap.Logger

	// writes are serialized so a repeated approve sees the refetched status
	mu sync.Mutex
}

// NewLifecycleService creates a LifecycleService
func NewLifecycleService(store order.Store, board *Board, l *zap.Logger) *LifecycleService {
	if l == nil {
		l = zap.NewNop()
	}
	return &LifecycleService{store: store, board: board, logger: l}
}

// Approve moves a WAITING order to PREPARING. Approving a PREPARING order
// does nothing; any other state is rejected.
func (s *LifecycleService) Approve(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	needsWrite, err := order.PlanApproval(o.Status)
	if err != nil {
		return nil, err
	}
	if !needsWrite {
		return snap, nil
	}
	return s.write(ctx, o, order.StatusPreparing)
}

// SetStatus moves an order to any valid status
func (s *LifecycleService) SetStatus(ctx context.Context, id string, raw string) (*Snapshot, error) {
	target, err := order.ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("order %s cannot move from %s to %s", id, o.Status, target))
	}
	return s.write(ctx, o, target)
}

func (s *LifecycleService) find(ctx context.Context, id string) (*Snapshot, *order.Order, error) {
	snap, err := s.board.Ensure(ctx)
	if err != nil {
		return nil, nil, err
	}
	o, ok := snap.Find(id)
	if !ok {
		return nil, nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("order %s not found", id))
	}
	return snap, o, nil
}

func (s *LifecycleService) write(ctx context.Context, o *order.Order, target order.Status) (*Snapshot, error) {
	if err := s.store.UpdateStatus(ctx, o.ID, target); err != nil {
		return nil, fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	logger.WithLogger(ctx, s.logger).Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", o.Status.String()),
		zap.String("to", target.String()),
	)
	return s.board.Refresh(ctx)
}

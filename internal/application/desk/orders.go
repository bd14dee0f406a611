package desk

import (
	"context"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OrderService places new orders
type OrderService struct {
	store  order.Store
	board  *Board
	cutoff order.Cutoff
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// OrderConfig configures an OrderService
type OrderConfig struct {
	Cutoff   order.Cutoff
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(store order.Store, board *Board, cfg OrderConfig) *OrderService {
	s := &OrderService{
		store:  store,
		board:  board,
		cutoff: cfg.Cutoff,
		loc:    cfg.Location,
		now:    cfg.Now,
		logger: cfg.Logger,
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

// Preview prices a draft against the current catalog
func (s *OrderService) Preview(ctx context.Context, draft order.Draft) (*order.Order, error) {
	snap, err := s.board.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return order.PriceDraft(draft, snap.Products)
}

// Create places the draft unless today's cut-off has passed. A failed
// refetch afterwards is logged; the order exists either way.
func (s *OrderService) Create(ctx context.Context, draft order.Draft) (*order.Order, error) {
	if err := s.cutoff.Check(s.now(), s.loc); err != nil {
		return nil, err
	}
	if _, err := s.Preview(ctx, draft); err != nil {
		return nil, err
	}

	created, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	log := logger.WithLogger(ctx, s.logger)
	log.Info("order created", zap.String("order_id", created.ID), zap.String("total", created.TotalPrice.String()))

	if _, err := s.board.Refresh(ctx); err != nil {
		log.Warn("refetch after order creation failed", zap.Error(err))
	}
	return created, nil
}

package desk

import (
	"context"
	"fmt"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/domain/report"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
)

// Scope selects which orders a listing returns
type Scope string

const (
	ScopeToday Scope = "today"
	ScopeAll   Scope = "all"
)

// ParseScope accepts "today" and "all"; empty means today
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "", ScopeToday:
		return ScopeToday, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown scope %q", raw))
}

// Listing is an order list with the snapshot it was read from
type Listing struct {
	Orders    []order.Order `json:"orders"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Stale     bool          `json:"stale"`
}

// ReportService builds the read models from a freshly loaded board
type ReportService struct {
	board *Board
	loc   *time.Location
	now   func() time.Time
}

// NewReportService creates a ReportService
func NewReportService(board *Board, loc *time.Location, now func() time.Time) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ReportService{board: board, loc: loc, now: now}
}

// Today returns the current calendar day in the desk's location
func (s *ReportService) Today() time.Time {
	return order.DayOf(s.now(), s.loc)
}

// Location returns the desk's time zone
func (s *ReportService) Location() *time.Location {
	return s.loc
}

// Orders lists orders newest first
func (s *ReportService) Orders(ctx context.Context, scope Scope) (*Listing, error) {
	snap, err := s.board.Load(ctx)
	if err != nil {
		return nil, err
	}
	orders := snap.Orders
	if scope == ScopeToday {
		orders = report.FilterDay(orders, s.now(), s.loc)
	}
	return &Listing{Orders: report.SortNewestFirst(orders), FetchedAt: snap.FetchedAt, Stale: snap.Stale}, nil
}

// MatrixView is a daily matrix together with the snapshot it was built from.
// Target edits made on it are staged and saved against Seq.
type MatrixView struct {
	Matrix    *report.DailyMatrix
	Seq       uint64
	FetchedAt time.Time
	Stale     bool
}

// DailyMatrix builds the shop x product matrix of day
func (s *ReportService) DailyMatrix(ctx context.Context, day time.Time) (*MatrixView, error) {
	snap, err := s.board.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &MatrixView{
		Matrix:    report.BuildDailyMatrix(snap.Orders, snap.Products, day, s.loc),
		Seq:       snap.Seq,
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
	}, nil
}

// Monthly builds the monthly report of one shop
func (s *ReportService) Monthly(ctx context.Context, shopKey string, year int, month time.Month) (*report.MonthlyReport, error) {
	snap, err := s.board.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.HasShop(shopKey) {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("shop %q has no orders", shopKey))
	}
	return report.BuildMonthlyReport(snap.Orders, snap.Products, shopKey, year, month, s.now(), s.loc), nil
}

// Rollup merges one shop's orders of day into a single composite order
func (s *ReportService) Rollup(ctx context.Context, shopKey string, day time.Time) (*report.Rollup, error) {
	snap, err := s.board.Load(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := report.BuildDailyRollup(snap.Orders, shopKey, day, s.loc)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("shop %q has no orders on %s", shopKey, day.Format(time.DateOnly)))
	}
	return r, nil
}

// Summary returns the dashboard counters for day
func (s *ReportService) Summary(ctx context.Context, day time.Time) (*report.Summary, error) {
	snap, err := s.board.Load(ctx)
	if err != nil {
		return nil, err
	}
	sum := report.Summarize(snap.Orders, day, s.loc)
	return &sum, nil
}

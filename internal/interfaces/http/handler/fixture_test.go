package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/session"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/dto"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	istanbul = time.FixedZone("TRT", 3*60*60)
	now      = time.Date(2025, 3, 10, 10, 0, 0, 0, istanbul)
	clock    = func() time.Time { return now }
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// fakeStore is an in-memory order backend
type fakeStore struct {
	mu         sync.Mutex
	orders     []order.Order
	products   order.Catalog
	listErr    error
	targetErrs map[string]error
	targets    []order.DailyTarget
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: []order.Order{
			placed("1", "Lale", now.Add(-2*time.Hour), order.StatusWaiting, 1, 2),
			placed("2", "Ada", now.Add(-time.Hour), order.StatusPreparing, 2, 1),
		},
		products: order.Catalog{
			{ID: 1, Name: "Su Böreği", PriceTray: decimal.NewFromInt(450)},
			{ID: 2, Name: "Kıymalı Börek", PriceTray: decimal.NewFromInt(500)},
		},
		targetErrs: map[string]error{},
	}
}

func placed(id, shop string, created time.Time, status order.Status, productID int64, qty int) order.Order {
	name, price := "Su Böreği", int64(450)
	if productID == 2 {
		name, price = "Kıymalı Börek", 500
	}
	unit := decimal.NewFromInt(price)
	sub := unit.Mul(decimal.NewFromInt(int64(qty)))
	return order.Order{
		ID: id, ShopName: shop, CreatedAt: created, Status: status, TotalPrice: sub,
		Items: []order.Item{{ProductName: name, Quantity: qty, UnitPrice: unit, SubTotal: sub}},
	}
}

func (s *fakeStore) ListOrders(_ context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]order.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *fakeStore) add(o order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
}

func (s *fakeStore) CreateOrder(_ context.Context, draft order.Draft) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := order.PriceDraft(draft, s.products)
	if err != nil {
		return nil, err
	}
	o.ID = strconv.Itoa(len(s.orders) + 1)
	o.ShopName = "Lale"
	o.CreatedAt = now
	s.orders = append(s.orders, *o)
	return o, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return nil
		}
	}
	return &notFoundErr{}
}

func (s *fakeStore) ReconcileDailyTarget(_ context.Context, target order.DailyTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.targetErrs[target.ShopName]; err != nil {
		return err
	}
	s.targets = append(s.targets, target)
	return nil
}

func (s *fakeStore) ListProducts(_ context.Context) (order.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(order.Catalog(nil), s.products...), nil
}

func (s *fakeStore) CreateProduct(_ context.Context, in order.ProductInput) (*order.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := order.Product{ID: int64(len(s.products) + 1), Name: *in.Name, PriceTray: *in.PriceTray}
	s.products = append(s.products, p)
	return &p, nil
}

func (s *fakeStore) UpdateProduct(_ context.Context, id int64, in order.ProductInput) (*order.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.products.IndexOf(id)
	if i < 0 {
		return nil, &notFoundErr{}
	}
	if in.PriceTray != nil {
		s.products[i].PriceTray = *in.PriceTray
	}
	p := s.products[i]
	return &p, nil
}

func (s *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.products.IndexOf(id)
	if i < 0 {
		return &notFoundErr{}
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

type notFoundErr struct{}

func (*notFoundErr) Error() string { return "not found" }

type fakeAuth struct {
	token string
	err   error
}

func (a *fakeAuth) Login(_ context.Context, _, _ string) (string, error) {
	return a.token, a.err
}

func (a *fakeAuth) Logout(_ context.Context) error { return nil }

type fixture struct {
	engine *gin.Engine
	store  *fakeStore
	auth   *fakeAuth
	tokens *session.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	auth := &fakeAuth{token: "opaque-token"}
	tokens := session.NewMemoryStore()

	board := desk.NewBoard(store, store, desk.WithClock(clock))
	reports := desk.NewReportService(board, istanbul, clock)
	lifecycle := desk.NewLifecycleService(store, board, nil)
	orders := desk.NewOrderService(store, board, desk.OrderConfig{Location: istanbul, Now: clock})
	reconcile := desk.NewReconcileService(store, board, desk.ReconcileConfig{Location: istanbul, Now: clock, MaxParallel: 2})
	products := desk.NewProductService(store, board)
	sessions := desk.NewSessionService(auth, tokens, clock, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	NewSessionHandler(sessions).RegisterRoutes(api)
	NewOrderHandler(reports, lifecycle, orders).RegisterRoutes(api)
	NewMatrixHandler(reports, reconcile).RegisterRoutes(api)
	NewReportHandler(reports).RegisterRoutes(api)
	NewProductHandler(products).RegisterRoutes(api)

	return &fixture{engine: engine, store: store, auth: auth, tokens: tokens}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// matrix loads the daily matrix the way the UI does before editing it
func (f *fixture) matrix(t *testing.T, query string) dto.MatrixResponse {
	t.Helper()
	w, env := f.do(t, http.MethodGet, "/api/v1/matrix/daily"+query, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var m dto.MatrixResponse
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

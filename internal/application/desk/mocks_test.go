package desk

import (
	"context"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of order.Store and order.ProductAdmin
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockStore) CreateOrder(ctx context.Context, draft order.Draft) (*order.Order, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockStore) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) ReconcileDailyTarget(ctx context.Context, target order.DailyTarget) error {
	args := m.Called(ctx, target)
	return args.Error(0)
}

func (m *MockStore) ListProducts(ctx context.Context) (order.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(order.Catalog), args.Error(1)
}

func (m *MockStore) CreateProduct(ctx context.Context, in order.ProductInput) (*order.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Product), args.Error(1)
}

func (m *MockStore) UpdateProduct(ctx context.Context, id int64, in order.ProductInput) (*order.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Product), args.Error(1)
}

func (m *MockStore) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

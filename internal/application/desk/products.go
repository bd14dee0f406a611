package desk

import (
	"context"

	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
)

// ProductService maintains the catalog. Writes refresh the board so the
// matrix columns follow.
type ProductService struct {
	admin order.ProductAdmin
	board *Board
}

// NewProductService creates a ProductService
func NewProductService(admin order.ProductAdmin, board *Board) *ProductService {
	return &ProductService{admin: admin, board: board}
}

func (s *ProductService) List(ctx context.Context) (order.Catalog, error) {
	return s.admin.ListProducts(ctx)
}

func (s *ProductService) Create(ctx context.Context, in order.ProductInput) (*order.Product, error) {
	p, err := s.admin.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	_, _ = s.board.Refresh(ctx)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, in order.ProductInput) (*order.Product, error) {
	p, err := s.admin.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	_, _ = s.board.Refresh(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.admin.DeleteProduct(ctx, id); err != nil {
		return err
	}
	_, _ = s.board.Refresh(ctx)
	return nil
}

package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codigix/Furnituredemo/internal/domain"
)

// Products is the catalog service. Write operations are admin-only;
// the router gates them, the service re-checks.
type Products struct {
	repo ProductRepo
}

func NewProducts(repo ProductRepo) *Products {
	return &Products{repo: repo}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Image       string
}

func (s *Products) Create(ctx context.Context, in ProductInput, caller Caller) (*domain.Product, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	p := &domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Image:       in.Image,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Products) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Products) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, category)
}

func (s *Products) Update(ctx context.Context, id string, in ProductInput, caller Caller) (*domain.Product, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.Category = in.Category
	p.Image = in.Image
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product from the catalog. Historical orders keep
// their snapshots, so nothing cascades into order lines.
func (s *Products) Delete(ctx context.Context, id string, caller Caller) error {
	if !caller.IsAdmin {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

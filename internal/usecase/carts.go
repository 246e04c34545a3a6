package usecase

import (
	"context"

	"github.com/codigix/Furnituredemo/internal/domain"
)

// Carts manages the per-user cart lines. Carts are ephemeral; a
// successful checkout clears them inside the order's atomic unit.
type Carts struct {
	repo     CartRepo
	products ProductRepo
}

func NewCarts(repo CartRepo, products ProductRepo) *Carts {
	return &Carts{repo: repo, products: products}
}

func (s *Carts) Add(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, userID, productID, quantity)
}

func (s *Carts) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Carts) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return s.repo.UpdateQuantity(ctx, userID, itemID, quantity)
}

func (s *Carts) Remove(ctx context.Context, userID, itemID string) error {
	return s.repo.Remove(ctx, userID, itemID)
}

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/gateway"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

type MySQLCartRepo struct {
	gw *gateway.Gateway
}

func NewMySQLCartRepo(gw *gateway.Gateway) *MySQLCartRepo {
	return &MySQLCartRepo{gw: gw}
}

// Upsert relies on the (user_id, product_id) unique key: a repeated
// add bumps the quantity instead of creating a second line.
func (r *MySQLCartRepo) Upsert(ctx context.Context, userID, productID string, quantity int) error {
	_, err := r.gw.DB().ExecContext(ctx, `
INSERT INTO carts (id,user_id,product_id,quantity,created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		uuid.NewString(), userID, productID, quantity, time.Now().UTC())
	return gateway.MapError(err)
}

func (r *MySQLCartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	rows, err := r.gw.DB().QueryContext(ctx, `
SELECT c.id, c.user_id, c.product_id, c.quantity,
       p.id, p.name, p.description, p.price, p.stock, p.category, p.image, p.created_at
FROM carts c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = ?
ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, gateway.MapError(err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		var p domain.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Image, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		it.Product = &p
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MySQLCartRepo) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	res, err := r.gw.DB().ExecContext(ctx, `
UPDATE carts SET quantity = ? WHERE id = ? AND user_id = ?`, quantity, itemID, userID)
	if err != nil {
		return gateway.MapError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MySQLCartRepo) Remove(ctx context.Context, userID, itemID string) error {
	res, err := r.gw.DB().ExecContext(ctx, `
DELETE FROM carts WHERE id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return gateway.MapError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)

package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/gateway"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

type MySQLOrderRepo struct {
	gw *gateway.Gateway
}

func NewMySQLOrderRepo(gw *gateway.Gateway) *MySQLOrderRepo {
	return &MySQLOrderRepo{gw: gw}
}

// Place writes the order aggregate as one unit of work: product rows
// are locked and snapshotted, the header and lines inserted, stock
// decremented, and (for cart checkouts) the cart cleared, all
// committing together or not at all. Stock checks run against the
// locked rows, so two concurrent placements of the last unit
// serialize and the loser gets an insufficient-stock rejection.
func (r *MySQLOrderRepo) Place(ctx context.Context, d usecase.OrderDraft) (*domain.Order, error) {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    d.UserID,
		Shipping:  d.Shipping,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.gw.RunAtomic(ctx, func(tx *sql.Tx) error {
		total := decimal.Zero
		for i, ln := range d.Lines {
			var (
				name, image string
				price       decimal.Decimal
				stock       int
			)
			row := tx.QueryRowContext(ctx, `
SELECT name, price, image, stock FROM products WHERE id = ? FOR UPDATE`, ln.ProductID)
			if err := row.Scan(&name, &price, &image, &stock); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return &domain.UnknownProductError{Line: i, ProductID: ln.ProductID}
				}
				return err
			}
			if stock < ln.Quantity {
				return &domain.InsufficientStockError{
					Line:      i,
					ProductID: ln.ProductID,
					Requested: ln.Quantity,
					Available: stock,
				}
			}
			o.Lines = append(o.Lines, domain.OrderLine{
				ID:        uuid.NewString(),
				ProductID: ln.ProductID,
				Name:      name,
				Price:     price,
				Quantity:  ln.Quantity,
				Image:     image,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		}
		o.Total = total

		if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,shipping_name,shipping_street,shipping_city,shipping_postal_code,shipping_country,total,status,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			o.ID, o.UserID, o.Shipping.Name, o.Shipping.Street, o.Shipping.City,
			o.Shipping.PostalCode, o.Shipping.Country, o.Total, o.Status, o.CreatedAt, o.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, l := range o.Lines {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO order_lines (id,order_id,line_no,product_id,name,price,quantity,image)
VALUES (?,?,?,?,?,?,?,?)`,
				l.ID, o.ID, i, l.ProductID, l.Name, l.Price, l.Quantity, l.Image,
			); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}

			res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
				l.Quantity, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				// Unreachable while the FOR UPDATE lock holds, kept
				// as a hard stop against overselling.
				return &domain.InsufficientStockError{Line: i, ProductID: l.ProductID, Requested: l.Quantity}
			}
		}

		if d.ClearCart {
			if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = ?`, d.UserID); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.gw.DB().QueryRowContext(ctx, `
SELECT id,user_id,shipping_name,shipping_street,shipping_city,shipping_postal_code,shipping_country,total,status,created_at,updated_at
FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, gateway.MapError(err)
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, gateway.MapError(err)
	}
	return o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `
SELECT id,user_id,shipping_name,shipping_street,shipping_city,shipping_postal_code,shipping_country,total,status,created_at,updated_at
FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *MySQLOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
SELECT id,user_id,shipping_name,shipping_street,shipping_city,shipping_postal_code,shipping_country,total,status,created_at,updated_at
FROM orders ORDER BY created_at DESC`)
}

func (r *MySQLOrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.gw.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.MapError(err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, gateway.MapError(err)
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, gateway.MapError(err)
		}
	}
	return orders, nil
}

// UpdateStatusIf writes the new status only if the stored status
// still matches from; rows == 0 means not found or a lost race.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.gw.DB().ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return false, gateway.MapError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) loadLines(ctx context.Context, o *domain.Order) error {
	rows, err := r.gw.DB().QueryContext(ctx, `
SELECT id,product_id,name,price,quantity,image
FROM order_lines WHERE order_id = ? ORDER BY line_no`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Price, &l.Quantity, &l.Image); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID, &o.UserID,
		&o.Shipping.Name, &o.Shipping.Street, &o.Shipping.City,
		&o.Shipping.PostalCode, &o.Shipping.Country,
		&o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

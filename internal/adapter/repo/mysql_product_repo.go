package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/gateway"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

type MySQLProductRepo struct {
	gw *gateway.Gateway
}

func NewMySQLProductRepo(gw *gateway.Gateway) *MySQLProductRepo {
	return &MySQLProductRepo{gw: gw}
}

func (r *MySQLProductRepo) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.gw.DB().ExecContext(ctx, `
INSERT INTO products (id,name,description,price,stock,category,image,created_at)
VALUES (?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.Image, p.CreatedAt)
	return gateway.MapError(err)
}

func (r *MySQLProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.gw.DB().QueryRowContext(ctx, `
SELECT id,name,description,price,stock,category,image,created_at
FROM products WHERE id = ?`, id)

	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Image, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, gateway.MapError(err)
	}
	return &p, nil
}

func (r *MySQLProductRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	query := `
SELECT id,name,description,price,stock,category,image,created_at
FROM products ORDER BY created_at DESC`
	var args []any
	if category != "" {
		query = `
SELECT id,name,description,price,stock,category,image,created_at
FROM products WHERE category = ? ORDER BY created_at DESC`
		args = append(args, category)
	}

	rows, err := r.gw.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gateway.MapError(err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Image, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *MySQLProductRepo) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.gw.DB().ExecContext(ctx, `
UPDATE products SET name=?, description=?, price=?, stock=?, category=?, image=? WHERE id=?`,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.Image, p.ID)
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

func (r *MySQLProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.gw.DB().ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

var _ usecase.ProductRepo = (*MySQLProductRepo)(nil)

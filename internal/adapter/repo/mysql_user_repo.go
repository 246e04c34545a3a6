package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/gateway"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

const mysqlDupEntry = 1062

type MySQLUserRepo struct {
	gw *gateway.Gateway
}

func NewMySQLUserRepo(gw *gateway.Gateway) *MySQLUserRepo {
	return &MySQLUserRepo{gw: gw}
}

func (r *MySQLUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.gw.DB().ExecContext(ctx, `
INSERT INTO users (id,name,email,password_hash,is_admin,created_at)
VALUES (?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		// unique index on email closes the check-then-insert race
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return domain.ErrEmailTaken
		}
		return gateway.MapError(err)
	}
	return nil
}

func (r *MySQLUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `
SELECT id,name,email,password_hash,is_admin,created_at FROM users WHERE id = ?`, id)
}

func (r *MySQLUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `
SELECT id,name,email,password_hash,is_admin,created_at FROM users WHERE email = ?`, email)
}

func (r *MySQLUserRepo) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.gw.DB().QueryRowContext(ctx, query, arg)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, gateway.MapError(err)
	}
	return &u, nil
}

func (r *MySQLUserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.gw.DB().ExecContext(ctx, `
UPDATE users SET name=?, email=?, password_hash=? WHERE id=?`,
		u.Name, u.Email, u.PasswordHash, u.ID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return domain.ErrEmailTaken
		}
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

var _ usecase.UserRepo = (*MySQLUserRepo)(nil)

package gateway

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/codigix/Furnituredemo/internal/domain"
)

const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

// Gateway wraps the database pool and owns the transaction boundary.
// It is constructed once at startup and injected into repositories;
// nothing else in the process holds the pool.
type Gateway struct {
	db *sql.DB
}

type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func Open(ctx context.Context, cfg PoolConfig) (*Gateway, error) {
	dsn, err := foundRowsDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &Gateway{db: db}, nil
}

// foundRowsDSN forces CLIENT_FOUND_ROWS so RowsAffected counts rows
// matched by the WHERE clause, not rows changed. Repositories read
// zero affected rows as not-found; without the flag an update that
// writes the values already stored reports zero for an existing row.
func foundRowsDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

func New(db *sql.DB) *Gateway { return &Gateway{db: db} }

func (g *Gateway) DB() *sql.DB { return g.db }

func (g *Gateway) Close() error { return g.db.Close() }

// RunAtomic executes fn inside one transaction: every write inside it
// becomes visible together or not at all. A cancelled caller context
// aborts the transaction before commit, so no partial state is ever
// observable. Serialization failures surface as domain.ErrConflict so
// the service layer can retry the whole unit of work.
func (g *Gateway) RunAtomic(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return MapError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return MapError(err)
	}
	if err := tx.Commit(); err != nil {
		return MapError(err)
	}
	return nil
}

// MapError translates driver-level failures into the domain taxonomy.
// Domain errors pass through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	var ise *domain.InsufficientStockError
	var upe *domain.UnknownProductError
	if errors.As(err, &ve) || errors.As(err, &ise) || errors.As(err, &upe) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, domain.ErrForbidden) {
		return err
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDeadlock, mysqlLockWaitTimeout:
			return fmt.Errorf("%w: %d", domain.ErrConflict, me.Number)
		}
		return err
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", domain.ErrDependency, err)
	}
	return err
}

package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"stockscore/internal/adapters/config"
	"stockscore/pkg/errors"
)

// Driver names accepted by DB_DRIVER
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Client wraps sqlx.DB for the score log
type Client struct {
	db *sqlx.DB
}

// NewClient opens the configured database with connection pooling
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, errors.Wrapf(errors.ErrNotImplemented, "database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", cfg.Driver)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if cfg.Driver == DriverSQLite {
		// sqlite serialises writers; one long-lived connection avoids
		// SQLITE_BUSY and keeps in-memory databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(errors.ErrUnavailable, "ping %s: %v", cfg.Driver, err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying sqlx.DB instance
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks database connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

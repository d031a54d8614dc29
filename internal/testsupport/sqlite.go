package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"stockscore/internal/adapters/config"
	"stockscore/internal/adapters/database"
)

// NewSQLiteDB opens a private in-memory sqlite database that lives as long as the test.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	client, err := database.NewClient(context.Background(), config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client.DB()
}

// SQLTx begins a transaction on db that is always rolled back after the test.
func SQLTx(t *testing.T, db *sqlx.DB) *sqlx.Tx {
	t.Helper()

	tx, err := db.BeginTxx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to start transaction: %v", err)
	}

	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	return tx
}

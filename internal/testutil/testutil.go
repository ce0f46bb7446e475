// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated SQLite database in a per-test temporary directory.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "sales.db") + "?_busy_timeout=5000"
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          dsn,
		QueryTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// InsertProduct writes a product row directly and returns its id.
func InsertProduct(t testing.TB, db *database.DB, name string, stock int, price float64) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(),
		`INSERT INTO products (id, name, stock, price, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, stock, price, time.Now().UTC())
	require.NoError(t, err)
	return id
}

// ProductStock reads the current stock of a product.
func ProductStock(t testing.TB, db *database.DB, id string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}

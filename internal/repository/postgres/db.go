// Package postgres implements the repository interfaces with plain SQL over
// database.Querier. Statements use $n placeholders and run unchanged on
// PostgreSQL and SQLite.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/repository"
)

// Store builds repositories over the pool or over a transaction.
type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

var _ repository.Transactor = (*Store)(nil)

// Repositories returns repositories bound to the connection pool.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(s.db)
}

// WithinTx runs fn with repositories bound to one transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.db.ExecTx(ctx, func(tx *database.Tx) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(q database.Querier) repository.Repositories {
	return repository.Repositories{
		Users:    NewUserRepository(q),
		Products: NewProductRepository(q),
		Clients:  NewClientRepository(q),
		Orders:   NewOrderRepository(q),
		Reports:  NewReportRepository(q),
		Events:   NewEventStore(q),
	}
}

// mapErr translates database sentinels into repository sentinels, keeping
// the original error in the chain.
func mapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case database.IsNotFound(err):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrNotFound, err)
	case database.IsDuplicateKey(err):
		return fmt.Errorf("%s: %w: %w", op, repository.ErrDuplicate, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// expectOne reports ErrNotFound when a statement touched no row.
func expectOne(res interface{ RowsAffected() (int64, error) }, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

// setClauses accumulates "col = $n" assignments for partial updates.
type setClauses struct {
	cols []string
	args []any
}

func (s *setClauses) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

func (s *setClauses) empty() bool { return len(s.cols) == 0 }

// build returns the SET list and the placeholder index for the trailing id.
func (s *setClauses) build() (string, int) {
	return strings.Join(s.cols, ", "), len(s.args) + 1
}

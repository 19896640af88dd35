// Package store implements the catalog persistence layer over PostgreSQL.
//
// All SQL is hand-written and parameterized; column names are never taken
// from callers. The pgx pool and pgx.Tx both satisfy DBTX, so every query
// method works identically inside and outside a transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

// DBTX is the querier shared by pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the catalog store. A Store returned by InTx is bound to the
// transaction and must not outlive it.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool // nil when tx-bound
}

// New creates a Store over the shared connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// InTx runs fn against a transaction-bound Store. The transaction commits
// when fn returns nil and rolls back otherwise; no partial effect survives
// a failure.
func (s *Store) InTx(ctx context.Context, fn func(*Store) error) error {
	if s.pool == nil {
		return errors.New("store: nested transactions are not supported")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// newID generates a collision-resistant row identifier. UUIDv7 keeps ids
// roughly time-ordered; fall back to v4 when the clock source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// mapRowError converts pgx sentinel errors into the store's error taxonomy.
func mapRowError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

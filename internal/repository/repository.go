// Package repository provides PostgreSQL persistence for the safety pipeline,
// built on pgx. Each query maps scan errors onto domain errors so callers
// never see driver-level failures.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// Repository bundles all query groups around a single connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a Repository around an established pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// isNoRows reports whether err is the pgx no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// internalErr wraps a driver failure as a domain internal error.
func internalErr(err error, op string) error {
	return domain.Internal(err, op, "database operation failed")
}

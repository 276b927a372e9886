// Package postgres implements the workflow repositories and the leave
// checker on PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/interview"
	"hrdesk/recruitment-service/internal/domain/offer"
	"hrdesk/recruitment-service/internal/domain/onboarding"
)

//go:embed schema.sql
var schema string

var (
	_ application.Repository = (*Store)(nil)
	_ interview.Repository   = (*Store)(nil)
	_ offer.Repository       = (*Store)(nil)
	_ onboarding.Repository  = (*Store)(nil)
)

// Store is backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store on pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// notFound turns pgx.ErrNoRows into a common not-found error and wraps
// anything else with op.
func notFound(err error, entity, id, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound(entity, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullIfEmpty stores "" as NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

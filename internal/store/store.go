// Package store persists the crawled record graph into the relational
// schema. One crawl produces one graph, written in a single transaction:
// either every row lands or none do.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/seoulmaps/placemeta/internal/model"
)

// Store defines the persistence interface for the crawl pipeline.
type Store interface {
	// EnsureSchema provisions all tables if absent. Idempotent.
	EnsureSchema(ctx context.Context) error
	// SavePlaceGraph writes the full graph atomically and returns the
	// generated place identity.
	SavePlaceGraph(ctx context.Context, g *model.Graph) (int64, error)

	GetPlace(ctx context.Context, id int64) (*model.PlaceRecord, error)
	ListPlaces(ctx context.Context, limit int) ([]model.PlaceRecord, error)

	Ping(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the store depends on. Tests satisfy
// it with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

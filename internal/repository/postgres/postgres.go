// Package postgres stores both catalogs in PostgreSQL with the pgvector extension.
// It serves the same search and fetch contracts as the valkey repositories.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// Repo is the pgvector-backed catalog store.
type Repo struct {
	db  *sql.DB
	dim int
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, dim int) (*Repo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return New(db, dim), nil
}

// New wraps an existing pool.
func New(db *sql.DB, dim int) *Repo {
	return &Repo{db: db, dim: dim}
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping")
	}
	return nil
}

// Close releases the pool.
func (r *Repo) Close() error {
	return r.db.Close()
}

func tableFor(idx domain.Index) (string, error) {
	switch idx {
	case domain.IndexShops:
		return "shops", nil
	case domain.IndexKnowledge:
		return "knowledge", nil
	default:
		return "", fmt.Errorf("unknown index %q", idx)
	}
}

// Package index maintains the FT indexes over the shop and knowledge hashes.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/logger"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters. Zero values keep the server defaults.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Manager creates and drops the two catalog indexes.
type Manager struct {
	store store
	keys  domain.Keyspace
	dim   int
	hnsw  HNSWConfig
}

// New creates an index manager for vectors of the given dimension.
func New(s store, keys domain.Keyspace, dim int) *Manager {
	return &Manager{store: s, keys: keys, dim: dim}
}

// WithHNSW overrides HNSW build parameters.
func (m *Manager) WithHNSW(cfg HNSWConfig) *Manager {
	m.hnsw = cfg
	return m
}

// Definition returns the FT schema for one family.
func (m *Manager) Definition(idx domain.Index) (*db.IndexDefinition, error) {
	b := db.NewIndex(m.keys.IndexName(idx)).
		Prefix(m.keys.RecordPrefix(idx)).
		Tag("category", "")
	if idx == domain.IndexShops {
		b = b.Numeric("legacy_id")
	}
	def, err := b.
		VectorHNSW("__vector", "vector", m.dim, db.DistanceCosine, m.hnsw.M, m.hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%s index definition: %w", idx, err)
	}
	return def, nil
}

// Ensure creates missing indexes. With recreate, existing ones are dropped
// first so a dimension change takes effect; stored hashes are re-indexed by the server.
func (m *Manager) Ensure(ctx context.Context, recreate bool) ([]string, error) {
	var created []string
	for _, idx := range []domain.Index{domain.IndexShops, domain.IndexKnowledge} {
		def, err := m.Definition(idx)
		if err != nil {
			return created, err
		}

		exists, err := m.store.IndexExists(ctx, def.Name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists && !recreate {
			continue
		}
		if exists {
			if err := m.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
				return created, fmt.Errorf("drop index %s: %w", def.Name, err)
			}
		}

		if err := m.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return created, fmt.Errorf("create index %s: %w", def.Name, err)
		}
		created = append(created, def.Name)
	}
	return created, nil
}

// Ready reports whether both indexes exist.
func (m *Manager) Ready(ctx context.Context) error {
	for _, idx := range []domain.Index{domain.IndexShops, domain.IndexKnowledge} {
		name := m.keys.IndexName(idx)
		ok, err := m.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("index %s: %w", name, db.ErrIndexNotFound)
		}
	}
	return nil
}

// EnsureSchema is Ensure for callers that only need the error.
func (m *Manager) EnsureSchema(ctx context.Context, recreate bool) error {
	created, err := m.Ensure(ctx, recreate)
	for _, name := range created {
		logger.FromContext(ctx).Info("index created", zap.String("index", name))
	}
	return err
}

// Package backend opens the configured record store and exposes it through
// the contracts the use cases consume.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopassist/internal/config"
	"github.com/kailas-cloud/shopassist/internal/db"
	dbValkey "github.com/kailas-cloud/shopassist/internal/db/valkey"
	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
	indexrepo "github.com/kailas-cloud/shopassist/internal/repository/index"
	knowledgerepo "github.com/kailas-cloud/shopassist/internal/repository/knowledge"
	pgrepo "github.com/kailas-cloud/shopassist/internal/repository/postgres"
	searchrepo "github.com/kailas-cloud/shopassist/internal/repository/search"
	shoprepo "github.com/kailas-cloud/shopassist/internal/repository/shop"
)

// Backend bundles one store behind the search, fetch, write and schema contracts.
type Backend struct {
	Driver string

	Searcher interface {
		Search(ctx context.Context, idx domain.Index, vector []float32, topK int, minSimilarity float64) ([]domain.MatchRef, error)
	}
	Shops interface {
		FetchShops(ctx context.Context, ids []string) ([]shop.Record, error)
		UpsertShops(ctx context.Context, records []shop.Record, vectors [][]float32) error
	}
	Knowledge interface {
		FetchKnowledge(ctx context.Context, ids []string) ([]knowledge.Record, error)
		UpsertKnowledge(ctx context.Context, records []knowledge.Record, vectors [][]float32) error
	}
	Schema interface {
		EnsureSchema(ctx context.Context, recreate bool) error
	}
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Indexes is nil for postgres, whose tables exist once the schema is ensured.
	Indexes interface {
		Ready(ctx context.Context) error
	}
	// KV is nil for postgres; it backs the question embedding cache.
	KV db.KVStore

	Keys  domain.Keyspace
	close func()
}

// Open connects to the configured driver and waits for it to answer.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	keys := domain.Keyspace{Prefix: cfg.Storage.KeyPrefix}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Database.Driver, err)
		}

		indexes := indexrepo.New(store, keys, cfg.Embedding.Dimensions).WithHNSW(indexrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
		return &Backend{
			Driver:    cfg.Database.Driver,
			Searcher:  searchrepo.New(store, keys),
			Shops:     shoprepo.New(store, keys),
			Knowledge: knowledgerepo.New(store, keys),
			Schema:    indexes,
			Pinger:    store,
			Indexes:   indexes,
			KV:        store,
			Keys:      keys,
			close:     store.Close,
		}, nil

	case config.DriverPostgres:
		octx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		repo, err := pgrepo.Open(octx, cfg.Database.DSN, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Backend{
			Driver:    cfg.Database.Driver,
			Searcher:  repo,
			Shops:     repo,
			Knowledge: repo,
			Schema:    repo,
			Pinger:    repo,
			Keys:      keys,
			close:     func() { _ = repo.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// Close releases the underlying connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// UpsertShops writes shops through the selected driver.
func (b *Backend) UpsertShops(ctx context.Context, records []shop.Record, vectors [][]float32) error {
	return b.Shops.UpsertShops(ctx, records, vectors) //nolint:wrapcheck // transparent delegate
}

// UpsertKnowledge writes knowledge entries through the selected driver.
func (b *Backend) UpsertKnowledge(ctx context.Context, records []knowledge.Record, vectors [][]float32) error {
	return b.Knowledge.UpsertKnowledge(ctx, records, vectors) //nolint:wrapcheck // transparent delegate
}

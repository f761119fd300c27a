package shop

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
	domshop "github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// store is the consumer interface for shop hashes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo reads and writes shop records stored as hashes.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a shop repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// FetchShops bulk-loads records by internal id. Unknown ids are skipped and
// an empty id list never reaches the store.
func (r *Repo) FetchShops(ctx context.Context, ids []string) ([]domshop.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.RecordKey(domain.IndexShops, id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch shops: %w", err)
	}

	out := make([]domshop.Record, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, parseHashFields(ids[i], m))
	}
	return out, nil
}

// UpsertShops writes records with their embeddings in one pipeline.
// vectors[i] belongs to records[i].
func (r *Repo) UpsertShops(ctx context.Context, records []domshop.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("upsert shops: %d records but %d vectors", len(records), len(vectors))
	}

	items := make([]db.HashSetItem, 0, len(records))
	for i := range records {
		fields, err := buildHashFields(&records[i], vectors[i])
		if err != nil {
			return fmt.Errorf("shop %s: %w", records[i].ID, err)
		}
		items = append(items, db.HashSetItem{
			Key:    r.keys.RecordKey(domain.IndexShops, records[i].ID),
			Fields: fields,
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert shops: %w", err)
	}
	return nil
}

package knowledge

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
	domknow "github.com/kailas-cloud/shopassist/internal/domain/knowledge"
)

// store is the consumer interface for knowledge hashes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo reads and writes knowledge entries stored as hashes.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a knowledge repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// FetchKnowledge bulk-loads entries by id, skipping unknown ids.
func (r *Repo) FetchKnowledge(ctx context.Context, ids []string) ([]domknow.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.RecordKey(domain.IndexKnowledge, id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch knowledge: %w", err)
	}

	out := make([]domknow.Record, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, domknow.Record{
			ID:       ids[i],
			Category: m["category"],
			Title:    m["title"],
			Content:  m["content"],
			ImageURL: m["image_url"],
		})
	}
	return out, nil
}

// UpsertKnowledge writes entries with their embeddings; vectors[i] belongs to records[i].
func (r *Repo) UpsertKnowledge(ctx context.Context, records []domknow.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("upsert knowledge: %d records but %d vectors", len(records), len(vectors))
	}

	items := make([]db.HashSetItem, len(records))
	for i := range records {
		rec := &records[i]
		fields := map[string]string{"id": rec.ID, "__vector": db.EncodeVector(vectors[i])}
		for k, v := range map[string]string{
			"category":  rec.Category,
			"title":     rec.Title,
			"content":   rec.Content,
			"image_url": rec.ImageURL,
		} {
			if v != "" {
				fields[k] = v
			}
		}
		items[i] = db.HashSetItem{Key: r.keys.RecordKey(domain.IndexKnowledge, rec.ID), Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert knowledge: %w", err)
	}
	return nil
}

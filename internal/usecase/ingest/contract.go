package ingest

import (
	"context"

	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// Writer persists records with their embeddings; vectors[i] belongs to records[i].
type Writer interface {
	UpsertShops(ctx context.Context, records []shop.Record, vectors [][]float32) error
	UpsertKnowledge(ctx context.Context, records []knowledge.Record, vectors [][]float32) error
}

// SchemaEnsurer creates the indexes or tables the writer needs.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context, recreate bool) error
}

package assistant

import (
	"context"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// Searcher runs a nearest-neighbor query against one index family.
// minSimilarity <= 0 means no threshold.
type Searcher interface {
	Search(ctx context.Context, idx domain.Index, vector []float32, topK int, minSimilarity float64) ([]domain.MatchRef, error)
}

// ShopFetcher bulk-loads shop records; order is unspecified.
type ShopFetcher interface {
	FetchShops(ctx context.Context, ids []string) ([]shop.Record, error)
}

// KnowledgeFetcher bulk-loads knowledge records; order is unspecified.
type KnowledgeFetcher interface {
	FetchKnowledge(ctx context.Context, ids []string) ([]knowledge.Record, error)
}

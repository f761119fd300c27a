package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
)

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs nearest-neighbor queries against the per-family FT indexes.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a search repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Search returns up to topK matches ordered by similarity descending.
// minSimilarity <= 0 disables the threshold.
func (r *Repo) Search(
	ctx context.Context, idx domain.Index, vector []float32, topK int, minSimilarity float64,
) ([]domain.MatchRef, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.IndexName(idx),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", idx, err)
	}
	return toMatches(sr, r.keys.RecordPrefix(idx), minSimilarity), nil
}

func toMatches(sr *db.SearchResult, prefix string, minSimilarity float64) []domain.MatchRef {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	matches := make([]domain.MatchRef, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if minSimilarity > 0 && e.Score < minSimilarity {
			continue
		}
		id := e.Fields["id"]
		if id == "" {
			id = strings.TrimPrefix(e.Key, prefix)
		}
		matches = append(matches, domain.MatchRef{ID: id, Similarity: e.Score})
	}
	return matches
}

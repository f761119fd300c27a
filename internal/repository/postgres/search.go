package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// searchQuery orders by cosine distance (<=>); similarity is 1 - distance.
func searchQuery(table string, withThreshold bool) string {
	q := `SELECT id, 1 - (embedding <=> $1) AS similarity FROM ` + table
	if withThreshold {
		q += ` WHERE 1 - (embedding <=> $1) >= $3`
	}
	return q + ` ORDER BY embedding <=> $1 LIMIT $2`
}

// Search returns up to topK matches, nearest first. minSimilarity <= 0 disables the threshold.
func (r *Repo) Search(
	ctx context.Context, idx domain.Index, vector []float32, topK int, minSimilarity float64,
) ([]domain.MatchRef, error) {
	table, err := tableFor(idx)
	if err != nil {
		return nil, err
	}

	args := []any{pgvector.NewVector(vector), topK}
	withThreshold := minSimilarity > 0
	if withThreshold {
		args = append(args, minSimilarity)
	}

	rows, err := r.db.QueryContext(ctx, searchQuery(table, withThreshold), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %s", table)
	}
	defer rows.Close()

	var matches []domain.MatchRef
	for rows.Next() {
		var m domain.MatchRef
		if err := rows.Scan(&m.ID, &m.Similarity); err != nil {
			return nil, errors.Wrap(err, "failed to scan match")
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to search %s", table)
	}
	return matches, nil
}

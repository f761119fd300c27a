package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func schemaStatements(dim int, recreate bool) []string {
	var stmts []string
	if recreate {
		stmts = append(stmts, `DROP TABLE IF EXISTS shops`, `DROP TABLE IF EXISTS knowledge`)
	}
	return append(stmts,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS shops (
			id             TEXT PRIMARY KEY,
			legacy_id      INTEGER,
			name           TEXT NOT NULL DEFAULT '',
			chome          TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			products       TEXT[] NOT NULL DEFAULT '{}',
			description    TEXT NOT NULL DEFAULT '',
			specialty_dish TEXT NOT NULL DEFAULT '',
			about_vendor   TEXT NOT NULL DEFAULT '',
			stall_style    TEXT NOT NULL DEFAULT '',
			schedule       TEXT NOT NULL DEFAULT '',
			message        TEXT NOT NULL DEFAULT '',
			lat            DOUBLE PRECISION,
			lng            DOUBLE PRECISION,
			embedding      vector(%d) NOT NULL
		)`, dim),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS knowledge (
			id        TEXT PRIMARY KEY,
			category  TEXT NOT NULL DEFAULT '',
			title     TEXT NOT NULL DEFAULT '',
			content   TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL
		)`, dim),
		`CREATE INDEX IF NOT EXISTS shops_embedding_idx ON shops USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS knowledge_embedding_idx ON knowledge USING hnsw (embedding vector_cosine_ops)`,
	)
}

// EnsureSchema creates the extension, tables and HNSW indexes.
// recreate drops both tables first.
func (r *Repo) EnsureSchema(ctx context.Context, recreate bool) error {
	if r.dim <= 0 {
		return errors.New("embedding dimension must be positive")
	}
	for _, stmt := range schemaStatements(r.dim, recreate) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return nil
}

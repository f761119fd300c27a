package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	domknow "github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	domshop "github.com/kailas-cloud/shopassist/internal/domain/shop"
)

const selectShops = `
	SELECT id, legacy_id, name, chome, category, products, description,
		specialty_dish, about_vendor, stall_style, schedule, message, lat, lng
	FROM shops
	WHERE id = ANY($1)`

const upsertShop = `
	INSERT INTO shops (id, legacy_id, name, chome, category, products, description,
		specialty_dish, about_vendor, stall_style, schedule, message, lat, lng, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		legacy_id = EXCLUDED.legacy_id, name = EXCLUDED.name, chome = EXCLUDED.chome,
		category = EXCLUDED.category, products = EXCLUDED.products,
		description = EXCLUDED.description, specialty_dish = EXCLUDED.specialty_dish,
		about_vendor = EXCLUDED.about_vendor, stall_style = EXCLUDED.stall_style,
		schedule = EXCLUDED.schedule, message = EXCLUDED.message,
		lat = EXCLUDED.lat, lng = EXCLUDED.lng, embedding = EXCLUDED.embedding`

const selectKnowledge = `
	SELECT id, category, title, content, image_url
	FROM knowledge
	WHERE id = ANY($1)`

const upsertKnowledge = `
	INSERT INTO knowledge (id, category, title, content, image_url, embedding)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		category = EXCLUDED.category, title = EXCLUDED.title, content = EXCLUDED.content,
		image_url = EXCLUDED.image_url, embedding = EXCLUDED.embedding`

// FetchShops loads shops by id; the row order is unspecified.
func (r *Repo) FetchShops(ctx context.Context, ids []string) ([]domshop.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, selectShops, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch shops")
	}
	defer rows.Close()

	var out []domshop.Record
	for rows.Next() {
		var (
			rec      domshop.Record
			legacy   sql.NullInt64
			lat, lng sql.NullFloat64
			products pq.StringArray
		)
		if err := rows.Scan(
			&rec.ID, &legacy, &rec.Name, &rec.Chome, &rec.Category, &products, &rec.Description,
			&rec.SpecialtyDish, &rec.AboutVendor, &rec.StallStyle, &rec.Schedule, &rec.Message, &lat, &lng,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan shop")
		}
		if legacy.Valid {
			v := int(legacy.Int64)
			rec.LegacyID = &v
		}
		if lat.Valid && lng.Valid {
			rec.Lat, rec.Lng = &lat.Float64, &lng.Float64
		}
		if len(products) > 0 {
			rec.Products = products
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to fetch shops")
	}
	return out, nil
}

// FetchKnowledge loads knowledge entries by id; the row order is unspecified.
func (r *Repo) FetchKnowledge(ctx context.Context, ids []string) ([]domknow.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, selectKnowledge, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch knowledge")
	}
	defer rows.Close()

	var out []domknow.Record
	for rows.Next() {
		var rec domknow.Record
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Title, &rec.Content, &rec.ImageURL); err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to fetch knowledge")
	}
	return out, nil
}

// UpsertShops writes shops in one transaction; vectors[i] belongs to records[i].
func (r *Repo) UpsertShops(ctx context.Context, records []domshop.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("upsert shops: %d records but %d vectors", len(records), len(vectors))
	}
	return r.inTx(ctx, upsertShop, len(records), func(i int) []any {
		rec := &records[i]
		var legacy sql.NullInt64
		if rec.LegacyID != nil {
			legacy = sql.NullInt64{Int64: int64(*rec.LegacyID), Valid: true}
		}
		var lat, lng sql.NullFloat64
		if p, ok := rec.Position(); ok {
			lat = sql.NullFloat64{Float64: p.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: p.Lng, Valid: true}
		}
		return []any{
			rec.ID, legacy, rec.Name, rec.Chome, rec.Category, pq.Array(nonNil(rec.Products)),
			rec.Description, rec.SpecialtyDish, rec.AboutVendor, rec.StallStyle, rec.Schedule,
			rec.Message, lat, lng, pgvector.NewVector(vectors[i]),
		}
	})
}

// UpsertKnowledge writes knowledge entries in one transaction.
func (r *Repo) UpsertKnowledge(ctx context.Context, records []domknow.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("upsert knowledge: %d records but %d vectors", len(records), len(vectors))
	}
	return r.inTx(ctx, upsertKnowledge, len(records), func(i int) []any {
		rec := &records[i]
		return []any{rec.ID, rec.Category, rec.Title, rec.Content, rec.ImageURL, pgvector.NewVector(vectors[i])}
	})
}

func (r *Repo) inTx(ctx context.Context, stmt string, n int, argsAt func(i int) []any) error {
	if n == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return errors.Wrap(err, "failed to prepare upsert")
	}
	defer prepared.Close()

	for i := 0; i < n; i++ {
		if _, err := prepared.ExecContext(ctx, argsAt(i)...); err != nil {
			return errors.Wrapf(err, "failed to upsert row %d", i)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit upsert")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

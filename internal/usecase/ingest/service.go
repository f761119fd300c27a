// Package ingest embeds seed records and writes them to the record store.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/logger"
)

// DefaultBatchSize is the number of texts sent per embedding request.
const DefaultBatchSize = 64

// Report summarizes a load.
type Report struct {
	Shops     int
	Knowledge int
	Tokens    int
}

// Service runs the offline load.
type Service struct {
	embed     domain.BatchEmbedder
	writer    Writer
	schema    SchemaEnsurer
	batchSize int
}

// New creates an ingest service.
func New(embed domain.BatchEmbedder, writer Writer, schema SchemaEnsurer) *Service {
	return &Service{embed: embed, writer: writer, schema: schema, batchSize: DefaultBatchSize}
}

// WithBatchSize overrides the embedding batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Load validates every record, ensures the schema, then embeds and writes
// shops and knowledge in batches. Nothing is written if validation fails.
func (s *Service) Load(ctx context.Context, seed *Seed, recreate bool) (Report, error) {
	shops := seed.ShopRecords()
	know := seed.KnowledgeRecords()

	if err := seed.Validate(); err != nil {
		return Report{}, err
	}

	if err := s.schema.EnsureSchema(ctx, recreate); err != nil {
		return Report{}, fmt.Errorf("ensure schema: %w", err)
	}

	log := logger.FromContext(ctx)
	var rep Report

	shopTexts := make([]string, len(shops))
	for i := range shops {
		shopTexts[i] = shops[i].EmbeddingText()
	}
	err := s.inBatches(ctx, shopTexts, &rep, func(lo, hi int, vectors [][]float32) error {
		if err := s.writer.UpsertShops(ctx, shops[lo:hi], vectors); err != nil {
			return fmt.Errorf("upsert shops [%d:%d]: %w", lo, hi, err)
		}
		rep.Shops += hi - lo
		return nil
	})
	if err != nil {
		return rep, err
	}
	log.Info("shops loaded", zap.Int("count", rep.Shops))

	knowTexts := make([]string, len(know))
	for i := range know {
		knowTexts[i] = know[i].EmbeddingText()
	}
	err = s.inBatches(ctx, knowTexts, &rep, func(lo, hi int, vectors [][]float32) error {
		if err := s.writer.UpsertKnowledge(ctx, know[lo:hi], vectors); err != nil {
			return fmt.Errorf("upsert knowledge [%d:%d]: %w", lo, hi, err)
		}
		rep.Knowledge += hi - lo
		return nil
	})
	if err != nil {
		return rep, err
	}
	log.Info("knowledge loaded", zap.Int("count", rep.Knowledge), zap.Int("tokens", rep.Tokens))

	return rep, nil
}

func (s *Service) inBatches(
	ctx context.Context, texts []string, rep *Report, write func(lo, hi int, vectors [][]float32) error,
) error {
	for lo := 0; lo < len(texts); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(texts))

		res, err := s.embed.BatchEmbed(ctx, texts[lo:hi])
		if err != nil {
			return fmt.Errorf("embed [%d:%d]: %w", lo, hi, err)
		}
		if len(res.Embeddings) != hi-lo {
			return fmt.Errorf("embed [%d:%d]: got %d vectors: %w", lo, hi, len(res.Embeddings), domain.ErrUpstreamFailure)
		}
		rep.Tokens += res.TotalTokens

		if err := write(lo, hi, res.Embeddings); err != nil {
			return err
		}
	}
	return nil
}

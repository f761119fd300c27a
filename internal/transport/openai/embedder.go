package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// Embedder implements domain.Embedder and domain.BatchEmbedder.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewEmbedder creates an OpenAI-compatible embedding client.
func NewEmbedder(cfg EmbedderConfig) *Embedder {
	return &Embedder{
		client:     newClient(cfg.APIKey, cfg.BaseURL),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
	}
}

// Embed vectorizes a single text. One attempt, no retry.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed vectorizes texts in one call. The response is validated before use:
// every input needs exactly one non-empty embedding, otherwise the call fails.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		observe(metrics.ServiceEmbedding, string(e.model), start, err)
		return domain.BatchEmbeddingResult{}, parseAPIError("embedding", err)
	}

	vectors, err := orderEmbeddings(resp.Data, len(texts), e.dimensions)
	observe(metrics.ServiceEmbedding, string(e.model), start, err)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	if resp.Usage.TotalTokens > 0 {
		metrics.UpstreamTokensTotal.WithLabelValues(metrics.ServiceEmbedding, string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(resp.Usage.TotalTokens)

	return domain.BatchEmbeddingResult{
		Embeddings:   vectors,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// orderEmbeddings places each embedding at its input index.
func orderEmbeddings(data []openai.Embedding, n, dim int) ([][]float32, error) {
	if len(data) != n {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(data), n, domain.ErrUpstreamFailure)
	}

	out := make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n || out[d.Index] != nil {
			return nil, fmt.Errorf("embedding response index %d invalid: %w", d.Index, domain.ErrUpstreamFailure)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding response missing vector %d: %w", d.Index, domain.ErrUpstreamFailure)
		}
		if dim > 0 && len(d.Embedding) != dim {
			return nil, fmt.Errorf("embedding has %d dimensions, want %d: %w",
				len(d.Embedding), dim, domain.ErrUpstreamFailure)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// HealthCheck verifies API availability via ListModels, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

package domain

import (
	"context"
	"errors"
	"testing"
)

type fakeEmbedder struct {
	result EmbeddingResult
	err    error
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	f.texts = append(f.texts, text)
	return f.result, f.err
}

type fakeBatchEmbedder struct {
	batch    BatchEmbeddingResult
	batchErr error
	seen     []string
}

func (f *fakeBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	f.seen = texts
	return f.batch, f.batchErr
}

type fakeHealthEmbedder struct {
	fakeEmbedder
	healthErr error
}

func (f *fakeHealthEmbedder) HealthCheck(context.Context) error { return f.healthErr }

func TestQueryEmbedder_Prefix(t *testing.T) {
	inner := &fakeEmbedder{result: EmbeddingResult{Embedding: []float32{1, 0}}}
	emb := NewQueryEmbedder(inner, "query: ")

	res, err := emb.Embed(context.Background(), "近くの八百屋")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.texts[0] != "query: 近くの八百屋" {
		t.Errorf("got %q", inner.texts[0])
	}
	if len(res.Embedding) != 2 {
		t.Errorf("expected 2 dims, got %d", len(res.Embedding))
	}
}

func TestQueryEmbedder_WrapsUpstreamError(t *testing.T) {
	inner := &fakeEmbedder{err: ErrUpstreamFailure}
	_, err := NewQueryEmbedder(inner, "").Embed(context.Background(), "x")
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}

func TestQueryEmbedder_HealthCheckDelegates(t *testing.T) {
	down := errors.New("down")
	emb := NewQueryEmbedder(&fakeHealthEmbedder{healthErr: down}, "")
	if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected down, got %v", err)
	}
	if err := NewQueryEmbedder(&fakeEmbedder{}, "").HealthCheck(context.Background()); err != nil {
		t.Fatalf("embedder without a probe must report healthy, got %v", err)
	}
}

func TestDocumentEmbedder_PrefixesEveryText(t *testing.T) {
	inner := &fakeBatchEmbedder{batch: BatchEmbeddingResult{Embeddings: [][]float32{{1}, {2}}, TotalTokens: 8}}
	res, err := NewDocumentEmbedder(inner, "passage: ").BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.seen) != 2 || inner.seen[0] != "passage: a" || inner.seen[1] != "passage: b" {
		t.Errorf("expected prefixed batch input, got %v", inner.seen)
	}
	if res.TotalTokens != 8 {
		t.Errorf("TotalTokens = %d", res.TotalTokens)
	}
}

func TestDocumentEmbedder_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewDocumentEmbedder(&fakeBatchEmbedder{batchErr: boom}, "").BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

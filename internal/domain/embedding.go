package domain

import (
	"context"
	"fmt"
)

// Embedder turns one question into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes catalog records in one provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies upstream provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is a question vector plus the tokens it cost.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds one vector per input text, in input order.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Instruction is a prefix some embedding models expect, with different text
// for questions ("query: ") and catalog records ("passage: ").
type Instruction string

func (in Instruction) apply(text string) string { return string(in) + text }

// QueryEmbedder prefixes questions before embedding them.
type QueryEmbedder struct {
	inner       Embedder
	instruction Instruction
}

// NewQueryEmbedder wraps the question-side embedder.
func NewQueryEmbedder(inner Embedder, instruction Instruction) *QueryEmbedder {
	return &QueryEmbedder{inner: inner, instruction: instruction}
}

// Embed embeds the prefixed question.
func (e *QueryEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.instruction.apply(text))
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("query embed: %w", err)
	}
	return res, nil
}

// HealthCheck reports the inner embedder's health; embedders without a probe count as healthy.
func (e *QueryEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := e.inner.(HealthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}

// DocumentEmbedder prefixes catalog texts before batch embedding them.
type DocumentEmbedder struct {
	inner       BatchEmbedder
	instruction Instruction
}

// NewDocumentEmbedder wraps the record-side batch embedder.
func NewDocumentEmbedder(inner BatchEmbedder, instruction Instruction) *DocumentEmbedder {
	return &DocumentEmbedder{inner: inner, instruction: instruction}
}

// BatchEmbed embeds every prefixed text in one call.
func (e *DocumentEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction.apply(t)
	}
	res, err := e.inner.BatchEmbed(ctx, prefixed)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("document embed: %w", err)
	}
	return res, nil
}

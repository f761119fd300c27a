package ingest

import (
	"context"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

type fakeEmbedder struct {
	batches [][]string
	short   bool
	err     error
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	vecs := make([][]float32, n)
	for i := range vecs {
		vecs[i] = []float32{float32(len(texts[i])), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs, TotalTokens: n * 2}, nil
}

type fakeWriter struct {
	shops     []shop.Record
	knowledge []knowledge.Record
	shopVecs  int
	knowVecs  int
	err       error
}

func (f *fakeWriter) UpsertShops(_ context.Context, records []shop.Record, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.shops = append(f.shops, records...)
	f.shopVecs += len(vectors)
	return nil
}

func (f *fakeWriter) UpsertKnowledge(_ context.Context, records []knowledge.Record, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.knowledge = append(f.knowledge, records...)
	f.knowVecs += len(vectors)
	return nil
}

type fakeSchema struct {
	calls    int
	recreate bool
	err      error
}

func (f *fakeSchema) EnsureSchema(_ context.Context, recreate bool) error {
	f.calls++
	f.recreate = recreate
	return f.err
}

const sampleSeed = `
shops:
  - id: shop-1
    legacy_id: 101
    name: 山田青果
    category: 野菜
    products: [トマト, きゅうり]
    lat: 33.5597
    lng: 133.5311
  - id: shop-2
    legacy_id: 102
    name: 田中の刃物
    category: 金物
knowledge:
  - id: k-1
    category: 施設
    title: トイレ
    content: 二丁目の角にあります
    image_url: https://example.com/map.png
`

func mustSeed(doc string) *Seed {
	s, err := ParseSeed(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}
	return s
}

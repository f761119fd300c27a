package assistant

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vector, TotalTokens: 3}, nil
}

type fakeCompleter struct {
	reply       string
	err         error
	system      string
	userMessage string
	calls       int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.userMessage = system, user
	return f.reply, f.err
}

// fakeCatalog serves both search families and record stores from memory.
type fakeCatalog struct {
	mu             sync.Mutex
	shopMatches    []domain.MatchRef
	knowMatches    []domain.MatchRef
	shops          []shop.Record
	knowledge      []knowledge.Record
	searchErr      error
	fetchErr       error
	searched       map[domain.Index]float64 // min similarity per family
	fetchedShopIDs []string
}

func (f *fakeCatalog) Search(
	_ context.Context, idx domain.Index, _ []float32, _ int, minSimilarity float64,
) ([]domain.MatchRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searched == nil {
		f.searched = make(map[domain.Index]float64)
	}
	f.searched[idx] = minSimilarity
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if idx == domain.IndexShops {
		return f.shopMatches, nil
	}
	return f.knowMatches, nil
}

func (f *fakeCatalog) FetchShops(_ context.Context, ids []string) ([]shop.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchedShopIDs = ids
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// reversed to prove callers re-associate by id
	out := make([]shop.Record, 0, len(f.shops))
	for i := len(f.shops) - 1; i >= 0; i-- {
		out = append(out, f.shops[i])
	}
	return out, nil
}

func (f *fakeCatalog) FetchKnowledge(_ context.Context, ids []string) ([]knowledge.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return f.knowledge, nil
}

// forbidden fails the test on any upstream call.
type forbidden struct{ t *testing.T }

func (f forbidden) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	f.t.Error("embedder must not be called")
	return domain.EmbeddingResult{}, nil
}

func (f forbidden) Complete(context.Context, string, string) (string, error) {
	f.t.Error("completer must not be called")
	return "", nil
}

func (f forbidden) Search(context.Context, domain.Index, []float32, int, float64) ([]domain.MatchRef, error) {
	f.t.Error("searcher must not be called")
	return nil, nil
}

func (f forbidden) FetchShops(context.Context, []string) ([]shop.Record, error) {
	f.t.Error("shop store must not be called")
	return nil, nil
}

func (f forbidden) FetchKnowledge(context.Context, []string) ([]knowledge.Record, error) {
	f.t.Error("knowledge store must not be called")
	return nil, nil
}

func forbiddenService(t *testing.T) *Service {
	t.Helper()
	f := forbidden{t: t}
	return New(Deps{Embedder: f, Completer: f, Searcher: f, Shops: f, Knowledge: f}, DefaultRetrieval())
}

func newService(emb *fakeEmbedder, comp *fakeCompleter, cat *fakeCatalog) *Service {
	return New(Deps{Embedder: emb, Completer: comp, Searcher: cat, Shops: cat, Knowledge: cat}, DefaultRetrieval())
}

func intPtr(v int) *int { return &v }

func coord(lat, lng float64) (*float64, *float64) { return &lat, &lng }

func shopAt(id string, legacy int, lat, lng float64) shop.Record {
	la, ln := coord(lat, lng)
	return shop.Record{ID: id, LegacyID: intPtr(legacy), Name: id, Lat: la, Lng: ln}
}

func matches(ids ...string) []domain.MatchRef {
	out := make([]domain.MatchRef, len(ids))
	for i, id := range ids {
		out[i] = domain.MatchRef{ID: id, Similarity: 0.9 - float64(i)*0.1}
	}
	return out
}

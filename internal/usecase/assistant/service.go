// Package assistant answers shop and market questions with retrieval-grounded generation.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/directive"
	"github.com/kailas-cloud/shopassist/internal/domain/intent"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
	"github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

// RetrievalConfig sets top-k and similarity floors per index family.
type RetrievalConfig struct {
	ShopTopK               int
	ShopMinSimilarity      float64
	KnowledgeTopK          int
	KnowledgeMinSimilarity float64
}

// DefaultRetrieval favors recall for shops and precision for knowledge.
func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		ShopTopK:               3,
		ShopMinSimilarity:      0,
		KnowledgeTopK:          3,
		KnowledgeMinSimilarity: 0.55,
	}
}

// Deps are the collaborators of the pipeline. A nil Embedder or Completer
// means the provider is not configured; questions then fail with
// domain.ErrServiceUnavailable.
type Deps struct {
	Embedder  domain.Embedder
	Completer domain.Completer
	Searcher  Searcher
	Shops     ShopFetcher
	Knowledge KnowledgeFetcher
}

// Response is the assembled answer. Empty ImageURL and nil ShopIDs are omitted on the wire.
type Response struct {
	Reply    string
	ImageURL string
	ShopIDs  []int
}

// Service runs the assistant pipeline. It holds no per-request state.
type Service struct {
	deps       Deps
	retrieval  RetrievalConfig
	classifier *intent.Classifier
}

// New creates the assistant service.
func New(deps Deps, retrieval RetrievalConfig) *Service {
	return &Service{deps: deps, retrieval: retrieval, classifier: intent.NewClassifier()}
}

// Ask answers a single question. Errors wrap domain.ErrInvalidRequest,
// domain.ErrServiceUnavailable or domain.ErrUpstreamFailure.
func (s *Service) Ask(ctx context.Context, text string, loc *domain.Location) (Response, error) {
	log := logger.FromContext(ctx)

	q, err := domain.NewQuery(text, loc)
	if err != nil {
		metrics.AssistantRepliesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return Response{}, err
	}

	if s.classifier.IsSelfIdentification(q.Text) {
		metrics.AssistantRepliesTotal.WithLabelValues(metrics.OutcomeCanned).Inc()
		return Response{Reply: intent.CannedSelfIntroduction}, nil
	}

	resp, err := s.answer(ctx, q)
	if err != nil {
		metrics.AssistantRepliesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error("assistant pipeline failed", zap.Error(err))
		return Response{}, err
	}
	metrics.AssistantRepliesTotal.WithLabelValues(metrics.OutcomeAnswered).Inc()
	return resp, nil
}

func (s *Service) answer(ctx context.Context, q domain.Query) (Response, error) {
	if err := s.ready(); err != nil {
		return Response{}, err
	}
	log := logger.FromContext(ctx)

	flags := s.classifier.Classify(q.Text)

	emb, err := s.deps.Embedder.Embed(ctx, q.Text)
	if err != nil {
		return Response{}, fmt.Errorf("embed question: %w", upstream(err))
	}
	if len(emb.Embedding) == 0 {
		return Response{}, fmt.Errorf("embed question: empty vector: %w", domain.ErrUpstreamFailure)
	}

	r, err := s.retrieve(ctx, emb.Embedding)
	if err != nil {
		return Response{}, err
	}

	raw, err := s.deps.Completer.Complete(ctx, SystemPrompt(),
		UserMessage(q, ShopContext(r.shops), KnowledgeContext(r.knowledge)))
	if err != nil {
		return Response{}, fmt.Errorf("generate reply: %w", upstream(err))
	}

	parsed := directive.Parse(raw)
	if parsed.Rejected {
		log.Warn("rejected malformed shop id directive", zap.Strings("tokens", parsed.RejectedTokens))
	}

	ids := UniqueIDs(parsed.ShopIDs, MaxShopIDs)
	fallback := false
	if len(ids) == 0 && flags.Shop && len(r.shopMatches) > 0 {
		ids = FallbackRank(r.shopMatches, r.shops, flags.Near, q.Location)
		fallback = true
		metrics.AssistantFallbackTotal.Inc()
	}

	log.Debug("assistant answered",
		zap.Bool("shop_intent", flags.Shop),
		zap.Bool("near_intent", flags.Near),
		zap.Bool("has_location", q.HasLocation()),
		zap.Int("shop_matches", len(r.shopMatches)),
		zap.Int("knowledge_matches", len(r.knowledgeMatches)),
		zap.Bool("fallback", fallback),
	)

	return assemble(parsed, ids, flags), nil
}

// assemble drops the shop list unless the question was about shops.
func assemble(parsed directive.Parsed, ids []int, flags intent.Flags) Response {
	resp := Response{Reply: parsed.Reply, ImageURL: parsed.ImageURL}
	if flags.Shop && len(ids) > 0 {
		resp.ShopIDs = ids
	}
	return resp
}

type retrieved struct {
	shopMatches      []domain.MatchRef
	shops            []shop.Record
	knowledgeMatches []domain.MatchRef
	knowledge        []knowledge.Record
}

// retrieve searches both families concurrently, each followed by its record fetch.
func (s *Service) retrieve(ctx context.Context, vector []float32) (retrieved, error) {
	var r retrieved
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.deps.Searcher.Search(gctx, domain.IndexShops, vector,
			s.retrieval.ShopTopK, s.retrieval.ShopMinSimilarity)
		if err != nil {
			return fmt.Errorf("search shops: %w", upstream(err))
		}
		metrics.RetrievalMatches.WithLabelValues(string(domain.IndexShops)).Observe(float64(len(m)))
		recs, err := s.deps.Shops.FetchShops(gctx, domain.IDs(m))
		if err != nil {
			return fmt.Errorf("fetch shops: %w", upstream(err))
		}
		r.shopMatches, r.shops = m, recs
		return nil
	})

	g.Go(func() error {
		m, err := s.deps.Searcher.Search(gctx, domain.IndexKnowledge, vector,
			s.retrieval.KnowledgeTopK, s.retrieval.KnowledgeMinSimilarity)
		if err != nil {
			return fmt.Errorf("search knowledge: %w", upstream(err))
		}
		metrics.RetrievalMatches.WithLabelValues(string(domain.IndexKnowledge)).Observe(float64(len(m)))
		recs, err := s.deps.Knowledge.FetchKnowledge(gctx, domain.IDs(m))
		if err != nil {
			return fmt.Errorf("fetch knowledge: %w", upstream(err))
		}
		r.knowledgeMatches, r.knowledge = m, recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return retrieved{}, err
	}
	return r, nil
}

func (s *Service) ready() error {
	switch {
	case s.deps.Embedder == nil:
		return fmt.Errorf("embedding provider not configured: %w", domain.ErrServiceUnavailable)
	case s.deps.Completer == nil:
		return fmt.Errorf("completion provider not configured: %w", domain.ErrServiceUnavailable)
	case s.deps.Searcher == nil || s.deps.Shops == nil || s.deps.Knowledge == nil:
		return fmt.Errorf("record store not configured: %w", domain.ErrServiceUnavailable)
	}
	return nil
}

// upstream classifies collaborator failures that are not already tagged.
func upstream(err error) error {
	if errors.Is(err, domain.ErrUpstreamFailure) || errors.Is(err, domain.ErrServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
}

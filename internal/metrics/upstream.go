package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream service labels.
const (
	ServiceEmbedding  = "embedding"
	ServiceCompletion = "completion"
)

// Upstream (embedding + completion provider) Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "upstream_requests_total",
			Help:      "Total number of calls to embedding and completion providers",
		},
		[]string{"service", "model", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopassist",
			Name:      "upstream_request_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "model"},
	)

	UpstreamTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "upstream_tokens_total",
			Help:      "Tokens reported by providers",
		},
		[]string{"service", "model", "type"},
	)
)

// Assistant pipeline metrics.
var (
	AssistantRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "assistant_replies_total",
			Help:      "Assistant replies by outcome (answered, canned, rejected, failed)",
		},
		[]string{"outcome"},
	)

	AssistantFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "assistant_fallback_total",
			Help:      "Replies whose shop ids came from the fallback ranker",
		},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "embedding_cache_total",
			Help:      "Question embedding cache lookups by result",
		},
		[]string{"result"},
	)

	RetrievalMatches = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopassist",
			Name:      "retrieval_matches",
			Help:      "Matches returned per vector search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"index"},
	)
)

// Reply outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeCanned   = "canned"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers upstream and assistant metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamTokensTotal)
	prometheus.MustRegister(AssistantRepliesTotal)
	prometheus.MustRegister(AssistantFallbackTotal)
	prometheus.MustRegister(RetrievalMatches)
	prometheus.MustRegister(EmbeddingCacheTotal)
	serviceMetricsRegistered = true
}

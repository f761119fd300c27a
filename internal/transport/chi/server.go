// Package chi exposes the assistant over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
	healthuc "github.com/kailas-cloud/shopassist/internal/usecase/health"
)

// Replies for failed questions. The body never carries error detail.
const (
	ReplyEmptyQuestion = "質問を入力してください。"
	ReplyApology       = "申し訳ありません。ただいま回答を生成できませんでした。しばらくしてからもう一度お試しください。"
)

const maxBodyBytes = 64 << 10

// AssistantRequest is the POST /api/assistant body.
type AssistantRequest struct {
	Text     string           `json:"text"`
	Location *locationPayload `json:"location,omitempty"`
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// AssistantResponse is the POST /api/assistant reply for every status.
type AssistantResponse struct {
	Reply    string `json:"reply"`
	ImageURL string `json:"imageUrl,omitempty"`
	ShopIDs  []int  `json:"shopIds,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is returned by middleware that rejects a request before routing.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server holds the HTTP handlers.
type Server struct {
	assistant Assistant
	health    HealthChecker
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(assistant Assistant, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{assistant: assistant, health: health, logger: logger}
}

// Router mounts the routes behind the standard middleware chain.
// An empty apiKeys list disables authentication.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/api/assistant", s.Ask)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Ask handles POST /api/assistant.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req AssistantRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Info("malformed assistant request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, AssistantResponse{Reply: ReplyEmptyQuestion})
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.assistant.Ask(ctx, req.Text, req.Location.toDomain())
	setUsageHeaders(w, usage)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, AssistantResponse{Reply: ReplyEmptyQuestion})
			return
		}
		log.Error("assistant failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, AssistantResponse{Reply: ReplyApology})
		return
	}

	writeJSON(w, http.StatusOK, AssistantResponse{
		Reply:    resp.Reply,
		ImageURL: resp.ImageURL,
		ShopIDs:  resp.ShopIDs,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// toDomain drops a location that lacks either coordinate.
func (l *locationPayload) toDomain() *domain.Location {
	if l == nil || l.Lat == nil || l.Lng == nil {
		return nil
	}
	return &domain.Location{Lat: *l.Lat, Lng: *l.Lng}
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.Completed {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.CompletionTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/assistant", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"ok"}`))
	})
	r.Post("/api/bad", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/assistant", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{}`)))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/assistant", "200"))
	if after-before != 1 {
		t.Errorf("requests_total delta = %f, want 1", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_CapturesStatus(t *testing.T) {
	r := newRouter()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bad", http.NoBody))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/bad", "400")); v < 1 {
		t.Errorf("expected a 400 sample, got %f", v)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404")); v < 1 {
		t.Errorf("unmatched routes should collapse to one label, got %f", v)
	}
}

func TestRegisterServiceMetrics_Idempotent(t *testing.T) {
	RegisterServiceMetrics()
	RegisterServiceMetrics()

	AssistantRepliesTotal.WithLabelValues(OutcomeCanned).Inc()
	if v := testutil.ToFloat64(AssistantRepliesTotal.WithLabelValues(OutcomeCanned)); v < 1 {
		t.Errorf("canned replies = %f", v)
	}
}

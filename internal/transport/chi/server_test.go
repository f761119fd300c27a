package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	assistantuc "github.com/kailas-cloud/shopassist/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/shopassist/internal/usecase/health"
)

type fakeAssistant struct {
	resp   assistantuc.Response
	err    error
	panics bool
	text   string
	loc    *domain.Location
	calls  int
}

func (f *fakeAssistant) Ask(ctx context.Context, text string, loc *domain.Location) (assistantuc.Response, error) {
	f.calls++
	f.text, f.loc = text, loc
	if f.panics {
		panic("boom")
	}
	if f.err == nil {
		u := domain.UsageFromContext(ctx)
		u.AddEmbeddingTokens(5)
		u.AddCompletionTokens(42)
	}
	return f.resp, f.err
}

type fakeHealth struct{ report healthuc.Report }

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newTestRouter(a Assistant, h HealthChecker) http.Handler {
	if h == nil {
		h = fakeHealth{}
	}
	return NewServer(a, h, zap.NewNop()).Router(nil)
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return rr, got
}

func TestAsk_Success(t *testing.T) {
	a := &fakeAssistant{resp: assistantuc.Response{
		Reply: "山田青果がおすすめです。", ImageURL: "http://x.png", ShopIDs: []int{12, 7},
	}}
	rr, got := post(t, newTestRouter(a, nil), `{"text":"トマトはどこ？","location":{"lat":33.5,"lng":133.5}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got["reply"] != "山田青果がおすすめです。" || got["imageUrl"] != "http://x.png" {
		t.Errorf("body = %v", got)
	}
	if ids, _ := got["shopIds"].([]any); len(ids) != 2 || ids[0] != float64(12) {
		t.Errorf("shopIds = %v", got["shopIds"])
	}
	if a.text != "トマトはどこ？" || a.loc == nil || a.loc.Lat != 33.5 || a.loc.Lng != 133.5 {
		t.Errorf("assistant got text=%q loc=%v", a.text, a.loc)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "5" || rr.Header().Get("X-Completion-Tokens") != "42" {
		t.Errorf("usage headers = %v", rr.Header())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestAsk_OmitsAbsentFields(t *testing.T) {
	a := &fakeAssistant{resp: assistantuc.Response{Reply: "こんにちは"}}
	rr, got := post(t, newTestRouter(a, nil), `{"text":"こんにちは"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	for _, k := range []string{"imageUrl", "shopIds"} {
		if _, ok := got[k]; ok {
			t.Errorf("%s must be omitted: %v", k, got)
		}
	}
	if a.loc != nil {
		t.Errorf("loc = %v, want nil", a.loc)
	}
}

func TestAsk_PartialLocationIsUnknown(t *testing.T) {
	a := &fakeAssistant{resp: assistantuc.Response{Reply: "ok"}}
	post(t, newTestRouter(a, nil), `{"text":"近くの店","location":{"lat":33.5}}`)
	if a.loc != nil {
		t.Errorf("loc = %v, want nil", a.loc)
	}
}

func TestAsk_BadRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		wantCalls int
	}{
		{"malformed json", `{"text":`, nil, 0},
		{"wrong type", `{"text":42}`, nil, 0},
		{"empty text", `{"text":"   "}`, fmt.Errorf("empty: %w", domain.ErrInvalidRequest), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAssistant{err: tc.err}
			rr, got := post(t, newTestRouter(a, nil), tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			if got["reply"] != ReplyEmptyQuestion {
				t.Errorf("reply = %v", got["reply"])
			}
			if a.calls != tc.wantCalls {
				t.Errorf("assistant calls = %d, want %d", a.calls, tc.wantCalls)
			}
		})
	}
}

func TestAsk_FailuresHideDetail(t *testing.T) {
	for _, sentinel := range []error{domain.ErrServiceUnavailable, domain.ErrUpstreamFailure, domain.ErrInternal} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			a := &fakeAssistant{err: fmt.Errorf("status 401 secret-key: %w", sentinel)}
			rr, got := post(t, newTestRouter(a, nil), `{"text":"トマト"}`)

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rr.Code)
			}
			if got["reply"] != ReplyApology || len(got) != 1 {
				t.Errorf("body = %v", got)
			}
		})
	}
}

func TestAsk_PanicRecovered(t *testing.T) {
	rr, got := post(t, newTestRouter(&fakeAssistant{panics: true}, nil), `{"text":"トマト"}`)
	if rr.Code != http.StatusInternalServerError || got["reply"] != ReplyApology {
		t.Errorf("status = %d body = %v", rr.Code, got)
	}
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/assistant", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(&fakeAssistant{}, nil).ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		report healthuc.Report
		want   int
	}{
		{"healthy", healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckOK, "embedding": healthuc.CheckOK, "completion": healthuc.CheckOK,
		}}, http.StatusOK},
		{"degraded", healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckOK, "embedding": healthuc.CheckNotConfigured, "completion": healthuc.CheckOK,
		}}, http.StatusServiceUnavailable},
		{"unhealthy", healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckError,
		}}, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
			rr := httptest.NewRecorder()
			newTestRouter(&fakeAssistant{}, fakeHealth{tc.report}).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
			var body HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tc.report.Status) || len(body.Checks) != len(tc.report.Checks) {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeAssistant{resp: assistantuc.Response{Reply: "ok"}}, nil)
	post(t, h, `{"text":"トマト"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `shopassist_http_requests_total{method="POST",path="/api/assistant",status="200"}`) {
		t.Error("request counter missing from /metrics")
	}
}

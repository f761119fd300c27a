package shopassist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "ftp://x", "://bad"} {
		_, err := New(u)
		assert.Error(t, err, u)
	}
}

func TestAsk(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/assistant", r.URL.Path)
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "包丁はどこ？", req["text"])
		assert.Equal(t, map[string]any{"lat": 33.5, "lng": 133.5}, req["location"])

		w.Header().Set("X-Embedding-Tokens", "7")
		w.Header().Set("X-Completion-Tokens", "120")
		_, _ = io.WriteString(w, `{"reply":"田中刃物店です。","imageUrl":"http://x.png","shopIds":[102,101]}`)
	})

	c, err := New(srv.URL+"/", WithAPIKey("k1"))
	require.NoError(t, err)

	ans, err := c.Ask(context.Background(), "包丁はどこ？", &Location{Lat: 33.5, Lng: 133.5})
	require.NoError(t, err)
	assert.Equal(t, Answer{
		Reply: "田中刃物店です。", ImageURL: "http://x.png", ShopIDs: []int{102, 101},
		EmbeddingTokens: 7, CompletionTokens: 120,
	}, ans)
}

func TestAsk_OmitsLocation(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NotContains(t, string(body), "location")
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"reply":"こんにちは"}`)
	})
	c, err := New(srv.URL)
	require.NoError(t, err)

	ans, err := c.Ask(context.Background(), "こんにちは", nil)
	require.NoError(t, err)
	assert.Empty(t, ans.ImageURL)
	assert.Nil(t, ans.ShopIDs)
}

func TestAsk_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		sentinel  error
		wantReply string
		retryable bool
	}{
		{"bad request", 400, `{"reply":"質問を入力してください。"}`, ErrInvalidRequest, "質問を入力してください。", false},
		{"unauthorized", 401, `{"code":"unauthorized","message":"invalid api key"}`, ErrUnauthorized, "invalid api key", false},
		{"server", 500, `{"reply":"申し訳ありません。"}`, ErrServer, "申し訳ありません。", true},
		{"gateway html", 502, `<html>bad gateway</html>`, ErrServer, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			c, err := New(srv.URL)
			require.NoError(t, err)

			_, err = c.Ask(context.Background(), "q", nil)
			require.ErrorIs(t, err, tc.sentinel)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantReply, apiErr.Reply)
			assert.Equal(t, tc.retryable, IsRetryable(err))
		})
	}
}

func TestAsk_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.NotErrorIs(t, err, ErrServer)
}

func TestAsk_MalformedBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"reply":`)
	})
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "q", nil)
	assert.ErrorContains(t, err, "decode response")
}

func TestHealth(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusServiceUnavailable} {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(status)
			s := "ok"
			if status != http.StatusOK {
				s = "degraded"
			}
			_, _ = io.WriteString(w, `{"status":"`+s+`","checks":{"database":"ok","embedding":"ok","completion":"not_configured"}}`)
		})
		c, err := New(srv.URL)
		require.NoError(t, err)

		hs, err := c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, status == http.StatusOK, hs.Healthy())
		assert.Equal(t, "not_configured", hs.Checks["completion"])
	}
}

func TestHealth_UnexpectedStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestPrometheusMetrics(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = io.WriteString(w, `{"status":"ok","checks":{}}`)
			return
		}
		_, _ = io.WriteString(w, `{"reply":"ok"}`)
	})

	reg := prometheus.NewRegistry()
	c, err := New(srv.URL, WithPrometheus(reg))
	require.NoError(t, err)
	_, err = c.Ask(context.Background(), "q", nil)
	require.NoError(t, err)

	// A second client on the same registry reuses the collectors.
	c2, err := New(srv.URL, WithPrometheus(reg))
	require.NoError(t, err)
	_, err = c2.Health(context.Background())
	require.NoError(t, err)
	_, err = c2.Ask(context.Background(), "q", nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "shopassist_sdk_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "client_error", outcome(&APIError{StatusCode: 400}))
	assert.Equal(t, "server_error", outcome(&APIError{StatusCode: 503}))
	assert.Equal(t, "transport_error", outcome(errors.New("dial tcp: refused")))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(&APIError{StatusCode: 401}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 502}))
}

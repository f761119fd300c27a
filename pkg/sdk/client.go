package shopassist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "shopassist-go-sdk"
	maxResponseBytes = 1 << 20
)

// Client calls a shopassist server. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	apiKey  string
	ua      string
	obs     *observer
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("shopassist: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("shopassist: base url must be http or https, got %q", baseURL)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.userAgent == "" {
		cfg.userAgent = defaultUserAgent
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		http:    cfg.httpClient,
		apiKey:  cfg.apiKey,
		ua:      cfg.userAgent,
		obs:     obs,
	}, nil
}

// Ask sends a question. loc may be nil. A 400 or 500 answer returns an
// *APIError whose Reply is still suitable for display.
func (c *Client) Ask(ctx context.Context, text string, loc *Location) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	body, err := json.Marshal(askRequest{Text: text, Location: loc})
	if err != nil {
		return Answer{}, fmt.Errorf("shopassist: encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/assistant", body)
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Answer{}, fmt.Errorf("shopassist: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Answer{}, apiError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, &ans); err != nil {
		return Answer{}, fmt.Errorf("shopassist: decode response: %w", err)
	}
	ans.EmbeddingTokens = headerInt(resp.Header, "X-Embedding-Tokens")
	ans.CompletionTokens = headerInt(resp.Header, "X-Completion-Tokens")
	return ans, nil
}

// Health fetches the server health. A degraded or failing server answers
// 503 with a report; that report is returned without an error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return HealthStatus{}, fmt.Errorf("shopassist: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, apiError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &hs); err != nil {
		return HealthStatus{}, fmt.Errorf("shopassist: decode health: %w", err)
	}
	return hs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, rd)
	if err != nil {
		return nil, fmt.Errorf("shopassist: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopassist: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// apiError reads the reply (assistant errors) or message (middleware errors) field.
func apiError(status int, raw []byte) error {
	var body struct {
		Reply   string `json:"reply"`
		Message string `json:"message"`
	}
	e := &APIError{StatusCode: status}
	if json.Unmarshal(raw, &body) == nil {
		e.Reply = body.Reply
		if e.Reply == "" {
			e.Reply = body.Message
		}
	}
	return e
}

func headerInt(h http.Header, key string) int {
	n, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// IsRetryable reports whether err is worth retrying: transport failures and 5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}

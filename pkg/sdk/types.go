package shopassist

// Location is the caller's position in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Answer is a successful assistant reply. ImageURL is empty and ShopIDs nil
// when the server omitted them.
type Answer struct {
	Reply    string `json:"reply"`
	ImageURL string `json:"imageUrl,omitempty"`
	ShopIDs  []int  `json:"shopIds,omitempty"`

	// Token usage reported in response headers; zero when the step did not run.
	EmbeddingTokens  int `json:"-"`
	CompletionTokens int `json:"-"`
}

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"/"not_configured"
}

// Healthy reports whether every check passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

type askRequest struct {
	Text     string    `json:"text"`
	Location *Location `json:"location,omitempty"`
}

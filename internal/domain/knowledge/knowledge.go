// Package knowledge holds general market facts unrelated to a specific shop.
package knowledge

import (
	"errors"
	"strings"
)

// Record is a knowledge entry. Empty strings mean "absent".
type Record struct {
	ID       string
	Category string
	Title    string
	Content  string
	ImageURL string
}

// Validate checks the fields the loader requires before indexing.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("knowledge id is required")
	}
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Content) == "" {
		return errors.New("knowledge entry needs a title or content")
	}
	return nil
}

// EmbeddingText is the text the offline loader vectorizes for the knowledge index.
func (r *Record) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{r.Category, r.Title, r.Content} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

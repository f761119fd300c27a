package domain

import (
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain/geo"
)

// Location is a caller position in degrees.
type Location struct {
	Lat float64
	Lng float64
}

// Query is a single stateless assistant question.
type Query struct {
	Text     string
	Location *Location
}

// NewQuery trims the text and rejects empty questions.
// Out-of-range coordinates are dropped: the question is still answered without proximity.
func NewQuery(text string, loc *Location) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrInvalidRequest
	}
	if loc != nil && !geo.ValidateCoordinates(loc.Lat, loc.Lng) {
		loc = nil
	}
	return Query{Text: text, Location: loc}, nil
}

// HasLocation reports whether the caller supplied usable coordinates.
func (q Query) HasLocation() bool {
	return q.Location != nil
}

// MatchRef is a single nearest-neighbor hit, ordered by similarity descending.
type MatchRef struct {
	ID         string
	Similarity float64
}

// IDs returns match ids in their original order.
func IDs(matches []MatchRef) []string {
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

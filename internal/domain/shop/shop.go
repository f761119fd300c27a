// Package shop holds the market stall record surfaced by recommendations.
package shop

import (
	"errors"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain/geo"
)

// Record is a shop as stored in the record store. Empty strings mean "absent".
// ID is the internal key; LegacyID is the integer identifier shown to callers.
type Record struct {
	ID            string
	LegacyID      *int
	Name          string
	Chome         string
	Category      string
	Products      []string
	Description   string
	SpecialtyDish string
	AboutVendor   string
	StallStyle    string
	Schedule      string
	Message       string
	Lat           *float64
	Lng           *float64
}

// Validate checks the fields the loader requires before indexing.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("shop id is required")
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return errors.New("shop coordinates require both lat and lng")
	}
	if r.Lat != nil && !geo.ValidateCoordinates(*r.Lat, *r.Lng) {
		return errors.New("shop coordinates out of range")
	}
	return nil
}

// Recommendable reports whether the shop can appear in a recommendation list.
func (r *Record) Recommendable() bool {
	return r.LegacyID != nil
}

// Position returns the shop coordinates when both are known.
func (r *Record) Position() (geo.Point, bool) {
	if r.Lat == nil || r.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *r.Lat, Lng: *r.Lng}, true
}

// EmbeddingText is the text the offline loader vectorizes for the shop index.
func (r *Record) EmbeddingText() string {
	parts := make([]string, 0, 8)
	for _, s := range []string{
		r.Name, r.Category, strings.Join(r.Products, " / "), r.SpecialtyDish,
		r.Description, r.AboutVendor, r.StallStyle, r.Message,
	} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// ByID indexes records by internal id. Later duplicates overwrite earlier ones.
func ByID(records []Record) map[string]*Record {
	m := make(map[string]*Record, len(records))
	for i := range records {
		m[records[i].ID] = &records[i]
	}
	return m
}

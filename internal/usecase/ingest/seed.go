package ingest

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// Seed is the YAML document the loader reads.
type Seed struct {
	Shops     []ShopSeed      `yaml:"shops"`
	Knowledge []KnowledgeSeed `yaml:"knowledge"`
}

// ShopSeed mirrors shop.Record with YAML names.
type ShopSeed struct {
	ID            string   `yaml:"id"`
	LegacyID      *int     `yaml:"legacy_id"`
	Name          string   `yaml:"name"`
	Chome         string   `yaml:"chome"`
	Category      string   `yaml:"category"`
	Products      []string `yaml:"products"`
	Description   string   `yaml:"description"`
	SpecialtyDish string   `yaml:"specialty_dish"`
	AboutVendor   string   `yaml:"about_vendor"`
	StallStyle    string   `yaml:"stall_style"`
	Schedule      string   `yaml:"schedule"`
	Message       string   `yaml:"message"`
	Lat           *float64 `yaml:"lat"`
	Lng           *float64 `yaml:"lng"`
}

// KnowledgeSeed mirrors knowledge.Record with YAML names.
type KnowledgeSeed struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Title    string `yaml:"title"`
	Content  string `yaml:"content"`
	ImageURL string `yaml:"image_url"`
}

// ParseSeed decodes a seed document. Unknown keys are rejected.
func ParseSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("parse seed: %v: %w", err, domain.ErrInvalidRequest)
	}
	return &s, nil
}

// ShopRecords converts the seed shops to domain records.
func (s *Seed) ShopRecords() []shop.Record {
	out := make([]shop.Record, len(s.Shops))
	for i, v := range s.Shops {
		out[i] = shop.Record{
			ID:            v.ID,
			LegacyID:      v.LegacyID,
			Name:          v.Name,
			Chome:         v.Chome,
			Category:      v.Category,
			Products:      v.Products,
			Description:   v.Description,
			SpecialtyDish: v.SpecialtyDish,
			AboutVendor:   v.AboutVendor,
			StallStyle:    v.StallStyle,
			Schedule:      v.Schedule,
			Message:       v.Message,
			Lat:           v.Lat,
			Lng:           v.Lng,
		}
	}
	return out
}

// KnowledgeRecords converts the seed knowledge entries to domain records.
func (s *Seed) KnowledgeRecords() []knowledge.Record {
	out := make([]knowledge.Record, len(s.Knowledge))
	for i, v := range s.Knowledge {
		out[i] = knowledge.Record(v)
	}
	return out
}

// Validate checks every record and rejects duplicate ids and legacy ids.
// All problems are reported together.
func (s *Seed) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(s.Shops))
	legacy := make(map[int]string, len(s.Shops))
	for i, r := range s.ShopRecords() {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("shops[%d]: %w", i, err))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("shops[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = struct{}{}
		if r.LegacyID != nil {
			if prev, dup := legacy[*r.LegacyID]; dup {
				errs = append(errs, fmt.Errorf("shops[%d]: legacy_id %d already used by %q", i, *r.LegacyID, prev))
			}
			legacy[*r.LegacyID] = r.ID
		}
	}

	seen = make(map[string]struct{}, len(s.Knowledge))
	for i, r := range s.KnowledgeRecords() {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("knowledge[%d]: %w", i, err))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("knowledge[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = struct{}{}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}

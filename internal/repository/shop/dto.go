package shop

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/shopassist/internal/db"
	domshop "github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// Hash field names. __vector is indexed under the alias "vector".
const (
	fieldID            = "id"
	fieldLegacyID      = "legacy_id"
	fieldName          = "name"
	fieldChome         = "chome"
	fieldCategory      = "category"
	fieldProducts      = "products"
	fieldDescription   = "description"
	fieldSpecialtyDish = "specialty_dish"
	fieldAboutVendor   = "about_vendor"
	fieldStallStyle    = "stall_style"
	fieldSchedule      = "schedule"
	fieldMessage       = "message"
	fieldLat           = "lat"
	fieldLng           = "lng"
	fieldVector        = "__vector"
)

func buildHashFields(r *domshop.Record, vector []float32) (map[string]string, error) {
	m := map[string]string{fieldID: r.ID}
	if r.LegacyID != nil {
		m[fieldLegacyID] = strconv.Itoa(*r.LegacyID)
	}
	if len(r.Products) > 0 {
		raw, err := json.Marshal(r.Products)
		if err != nil {
			return nil, fmt.Errorf("marshal products: %w", err)
		}
		m[fieldProducts] = string(raw)
	}
	for k, v := range map[string]string{
		fieldName:          r.Name,
		fieldChome:         r.Chome,
		fieldCategory:      r.Category,
		fieldDescription:   r.Description,
		fieldSpecialtyDish: r.SpecialtyDish,
		fieldAboutVendor:   r.AboutVendor,
		fieldStallStyle:    r.StallStyle,
		fieldSchedule:      r.Schedule,
		fieldMessage:       r.Message,
	} {
		if v != "" {
			m[k] = v
		}
	}
	if r.Lat != nil && r.Lng != nil {
		m[fieldLat] = strconv.FormatFloat(*r.Lat, 'f', -1, 64)
		m[fieldLng] = strconv.FormatFloat(*r.Lng, 'f', -1, 64)
	}
	if len(vector) > 0 {
		m[fieldVector] = db.EncodeVector(vector)
	}
	return m, nil
}

// parseHashFields rebuilds a record. Unparseable optional fields are left absent.
func parseHashFields(id string, m map[string]string) domshop.Record {
	r := domshop.Record{
		ID:            id,
		Name:          m[fieldName],
		Chome:         m[fieldChome],
		Category:      m[fieldCategory],
		Description:   m[fieldDescription],
		SpecialtyDish: m[fieldSpecialtyDish],
		AboutVendor:   m[fieldAboutVendor],
		StallStyle:    m[fieldStallStyle],
		Schedule:      m[fieldSchedule],
		Message:       m[fieldMessage],
	}
	if v, ok := m[fieldID]; ok && v != "" {
		r.ID = v
	}
	if v, err := strconv.Atoi(m[fieldLegacyID]); err == nil {
		r.LegacyID = &v
	}
	if raw := m[fieldProducts]; raw != "" {
		var products []string
		if err := json.Unmarshal([]byte(raw), &products); err == nil {
			r.Products = products
		}
	}
	lat, latErr := strconv.ParseFloat(m[fieldLat], 64)
	lng, lngErr := strconv.ParseFloat(m[fieldLng], 64)
	if latErr == nil && lngErr == nil {
		r.Lat, r.Lng = &lat, &lng
	}
	return r
}

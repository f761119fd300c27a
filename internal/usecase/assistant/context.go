package assistant

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// NoMatches stands in for an empty context block so the prompt keeps its shape.
const NoMatches = "該当なし"

type pair struct{ key, value string }

// line folds each value onto a single line; multi-line content would split the record.
func line(pairs []pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if v := strings.Join(strings.Fields(p.value), " "); v != "" {
			parts = append(parts, p.key+":"+v)
		}
	}
	return strings.Join(parts, " | ")
}

func block(lines []string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return NoMatches
	}
	return strings.Join(kept, "\n")
}

// ShopContext renders one line per shop. The id shown is the legacy id, the
// only identifier the model may echo back.
func ShopContext(records []shop.Record) string {
	lines := make([]string, len(records))
	for i := range records {
		r := &records[i]
		var id string
		if r.LegacyID != nil {
			id = strconv.Itoa(*r.LegacyID)
		}
		lines[i] = line([]pair{
			{"id", id},
			{"name", r.Name},
			{"category", r.Category},
			{"products", strings.Join(r.Products, " / ")},
			{"specialty_dish", r.SpecialtyDish},
			{"description", r.Description},
			{"message", r.Message},
		})
	}
	return block(lines)
}

// KnowledgeContext renders one line per knowledge entry.
func KnowledgeContext(records []knowledge.Record) string {
	lines := make([]string, len(records))
	for i := range records {
		r := &records[i]
		lines[i] = line([]pair{
			{"id", r.ID},
			{"category", r.Category},
			{"title", r.Title},
			{"content", r.Content},
			{"image_url", r.ImageURL},
		})
	}
	return block(lines)
}

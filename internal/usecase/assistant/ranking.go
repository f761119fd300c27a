package assistant

import (
	"sort"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/geo"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

// MaxShopIDs caps every recommendation list.
const MaxShopIDs = 3

type candidate struct {
	legacyID int
	distance float64
	known    bool
}

// FallbackRank orders recommendable shops when the model named none.
// Matches are walked in similarity order; with near intent and a caller
// location, shops with coordinates sort by haversine distance ascending and
// shops without a distance follow in similarity order.
func FallbackRank(matches []domain.MatchRef, records []shop.Record, near bool, loc *domain.Location) []int {
	byID := shop.ByID(records)
	useDistance := near && loc != nil
	var origin geo.Point
	if useDistance {
		origin = geo.Point{Lat: loc.Lat, Lng: loc.Lng}
	}

	cands := make([]candidate, 0, len(matches))
	for _, m := range matches {
		rec, ok := byID[m.ID]
		if !ok || !rec.Recommendable() {
			continue
		}
		c := candidate{legacyID: *rec.LegacyID}
		if pos, ok := rec.Position(); ok && useDistance {
			c.distance = geo.HaversineKm(origin, pos)
			c.known = true
		}
		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.known != b.known {
			return a.known
		}
		return a.known && a.distance < b.distance
	})

	ids := make([]int, len(cands))
	for i, c := range cands {
		ids[i] = c.legacyID
	}
	return UniqueIDs(ids, MaxShopIDs)
}

// UniqueIDs keeps the first occurrence of each id and at most limit entries.
func UniqueIDs(ids []int, limit int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, min(len(ids), limit))
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

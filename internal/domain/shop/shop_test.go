package shop

import "testing"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"minimal", Record{ID: "s1"}, false},
		{"missing id", Record{Name: "八百屋"}, true},
		{"half coordinates", Record{ID: "s1", Lat: floatPtr(35)}, true},
		{"out of range", Record{ID: "s1", Lat: floatPtr(95), Lng: floatPtr(0)}, true},
		{"full", Record{ID: "s1", LegacyID: intPtr(7), Lat: floatPtr(35.6), Lng: floatPtr(139.7)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rec.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRecommendable(t *testing.T) {
	if (&Record{ID: "a"}).Recommendable() {
		t.Error("shop without legacy id must not be recommendable")
	}
	if !(&Record{ID: "a", LegacyID: intPtr(0)}).Recommendable() {
		t.Error("legacy id 0 is still a legacy id")
	}
}

func TestPosition(t *testing.T) {
	r := Record{ID: "a", Lat: floatPtr(1), Lng: floatPtr(2)}
	p, ok := r.Position()
	if !ok || p.Lat != 1 || p.Lng != 2 {
		t.Fatalf("Position() = %v, %v", p, ok)
	}
	if _, ok := (&Record{ID: "b", Lat: floatPtr(1)}).Position(); ok {
		t.Error("partial coordinates must not yield a position")
	}
}

func TestEmbeddingText_SkipsEmptyFields(t *testing.T) {
	r := Record{ID: "a", Name: "山田青果", Products: []string{"トマト", "きゅうり"}, Message: " "}
	if got := r.EmbeddingText(); got != "山田青果\nトマト / きゅうり" {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

func TestByID(t *testing.T) {
	recs := []Record{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}
	m := ByID(recs)
	if m["b"].Name != "two" || len(m) != 2 {
		t.Errorf("ByID = %v", m)
	}
}

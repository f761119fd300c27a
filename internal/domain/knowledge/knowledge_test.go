package knowledge

import "testing"

func TestValidate(t *testing.T) {
	if err := (&Record{Title: "x"}).Validate(); err == nil {
		t.Error("expected error for missing id")
	}
	if err := (&Record{ID: "k1"}).Validate(); err == nil {
		t.Error("expected error for empty entry")
	}
	if err := (&Record{ID: "k1", Content: "トイレは二丁目"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEmbeddingText(t *testing.T) {
	r := Record{ID: "k1", Category: "施設", Title: "トイレ", Content: "二丁目の角", ImageURL: "http://x/map.png"}
	if got := r.EmbeddingText(); got != "施設\nトイレ\n二丁目の角" {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

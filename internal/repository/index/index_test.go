package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
)

type fakeStore struct {
	existing map[string]bool
	created  []string
	dropped  []string
	infoErr  error
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	f.created = append(f.created, def.Name)
	f.existing[def.Name] = true
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string) error {
	f.dropped = append(f.dropped, name)
	delete(f.existing, name)
	return nil
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	if f.infoErr != nil {
		return false, f.infoErr
	}
	return f.existing[name], nil
}

func newManager(existing ...string) (*Manager, *fakeStore) {
	fs := &fakeStore{existing: map[string]bool{}}
	for _, n := range existing {
		fs.existing[n] = true
	}
	return New(fs, domain.Keyspace{Prefix: "sa:"}, 4), fs
}

func TestDefinition_ShopHasLegacyID(t *testing.T) {
	m, _ := newManager()

	def, err := m.Definition(domain.IndexShops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "sa:shop:idx" || def.Prefixes[0] != "sa:shop:" {
		t.Errorf("def = %+v", def)
	}
	var hasLegacy, hasVector bool
	for _, f := range def.Fields {
		hasLegacy = hasLegacy || f.Name == "legacy_id"
		hasVector = hasVector || (f.Alias == "vector" && f.VectorDim == 4 && f.VectorDistance == db.DistanceCosine)
	}
	if !hasLegacy || !hasVector {
		t.Errorf("fields = %+v", def.Fields)
	}

	kdef, err := m.Definition(domain.IndexKnowledge)
	if err != nil {
		t.Fatal(err)
	}
	if len(kdef.Fields) != 2 {
		t.Errorf("knowledge fields = %+v", kdef.Fields)
	}
}

func TestDefinition_ZeroDim(t *testing.T) {
	m := New(&fakeStore{}, domain.Keyspace{}, 0)
	if _, err := m.Definition(domain.IndexShops); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestEnsure_CreatesOnlyMissing(t *testing.T) {
	m, fs := newManager("sa:shop:idx")

	created, err := m.Ensure(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 || created[0] != "sa:knowledge:idx" {
		t.Errorf("created = %v", created)
	}
	if len(fs.dropped) != 0 {
		t.Errorf("dropped = %v", fs.dropped)
	}
}

func TestEnsure_Recreate(t *testing.T) {
	m, fs := newManager("sa:shop:idx", "sa:knowledge:idx")

	created, err := m.Ensure(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 || len(fs.dropped) != 2 {
		t.Errorf("created = %v, dropped = %v", created, fs.dropped)
	}
}

func TestReady(t *testing.T) {
	m, fs := newManager("sa:shop:idx")
	ctx := context.Background()

	if err := m.Ready(ctx); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}

	fs.existing["sa:knowledge:idx"] = true
	if err := m.Ready(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fs.infoErr = errors.New("timeout")
	if err := m.Ready(ctx); err == nil {
		t.Fatal("expected error")
	}
}

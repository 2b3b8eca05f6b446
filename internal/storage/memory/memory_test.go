package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"opsboard/internal/core"
	"opsboard/internal/ports"
	"opsboard/internal/schema"
)

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	tasks, err := s.Collection(core.EntityTasks)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}

	created, err := tasks.Create(ctx, core.Record{"title": "Logo", "status": "todo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.ID()
	if id == "" || !created.Has("created_at") {
		t.Fatalf("expected id and created_at, got %v", created)
	}

	if err := tasks.Update(ctx, id, core.Record{"status": "done", "id": "hijack"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := tasks.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["status"] != "done" || got["title"] != "Logo" || got.ID() != id {
		t.Fatalf("unexpected merged record: %v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got["title"] = "changed"
	again, _ := tasks.Get(ctx, id)
	if again["title"] != "Logo" {
		t.Fatalf("store mutated through returned record: %v", again)
	}

	if err := tasks.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.Get(ctx, id); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteKeepsIndexConsistent(t *testing.T) {
	ctx := context.Background()
	leads, _ := New(nil).Collection(core.EntityLeads)
	a, _ := leads.Create(ctx, core.Record{"leadName": "A"})
	b, _ := leads.Create(ctx, core.Record{"leadName": "B"})
	c, _ := leads.Create(ctx, core.Record{"leadName": "C"})

	if err := leads.Delete(ctx, a.ID()); err != nil {
		t.Fatal(err)
	}
	for _, r := range []core.Record{b, c} {
		got, err := leads.Get(ctx, r.ID())
		if err != nil || got["leadName"] != r["leadName"] {
			t.Fatalf("lookup after delete broken for %v: %v %v", r, got, err)
		}
	}
	rows, _ := leads.List(ctx)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestUnknownEntity(t *testing.T) {
	if _, err := New(nil).Collection("widgets"); !errors.Is(err, ports.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatal(err)
	}
	tasks, _ := New(v).Collection(core.EntityTasks)
	_, err = tasks.Create(context.Background(), core.Record{"status": "todo"})
	if !schema.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":"l-1","leadName":"Acme","status":"new"},{"leadName":"Beta"}]`
	if err := os.WriteFile(filepath.Join(dir, "leads.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFromFiles(dir, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	leads, _ := s.Collection(core.EntityLeads)
	rows, _ := leads.List(context.Background())
	if len(rows) != 2 || rows[0].ID() != "l-1" || rows[1].ID() == "" {
		t.Fatalf("unexpected seeded rows: %v", rows)
	}

	tasks, _ := s.Collection(core.EntityTasks)
	if rows, _ := tasks.List(context.Background()); len(rows) != 0 {
		t.Fatalf("expected empty tasks, got %v", rows)
	}
}

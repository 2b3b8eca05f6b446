package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/ports"
	"opsboard/internal/schema"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "opsboard.db"), v, log.Discard())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tasks, err := repo.Collection(core.EntityTasks)
	if err != nil {
		t.Fatal(err)
	}

	first, err := tasks.Create(ctx, core.Record{"title": "Logo", "actualHours": 6.0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := tasks.Create(ctx, core.Record{"title": "Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].ID() != first.ID() || rows[1].ID() != second.ID() {
		t.Fatalf("expected insertion order, got %v", rows)
	}
	if rows[0]["actualHours"] != 6.0 {
		t.Fatalf("expected numeric field preserved, got %#v", rows[0]["actualHours"])
	}

	if err := tasks.Update(ctx, first.ID(), core.Record{"status": "done"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := tasks.Get(ctx, first.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["status"] != "done" || got["title"] != "Logo" || !got.Has("updated_at") {
		t.Fatalf("unexpected merged record %v", got)
	}

	if err := tasks.Delete(ctx, second.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := tasks.Delete(ctx, second.ID()); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteUpdateMissing(t *testing.T) {
	repo := newTestRepo(t)
	leads, _ := repo.Collection(core.EntityLeads)
	err := leads.Update(context.Background(), "nope", core.Record{"status": "won"})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteCreateValidates(t *testing.T) {
	repo := newTestRepo(t)
	clients, _ := repo.Collection(core.EntityClients)
	_, err := clients.Create(context.Background(), core.Record{"status": "active"})
	if !schema.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSQLiteSeedSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rows := []core.Record{{"id": "c-1", "clientName": "Acme"}}
	if err := repo.Seed(ctx, core.EntityClients, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.Seed(ctx, core.EntityClients, rows); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	clients, _ := repo.Collection(core.EntityClients)
	got, _ := clients.List(ctx)
	if len(got) != 1 {
		t.Fatalf("expected one client after reseed, got %d", len(got))
	}
}

func TestSQLiteViews(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, ok, err := repo.GetView(ctx, "sort:tasks"); err != nil || ok {
		t.Fatalf("expected missing view, got ok=%v err=%v", ok, err)
	}
	if err := repo.SetView(ctx, "sort:tasks", `{"column":"title","direction":"asc"}`); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetView(ctx, "sort:tasks", `{"column":"title","direction":"desc"}`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := repo.GetView(ctx, "sort:tasks")
	if err != nil || !ok || v != `{"column":"title","direction":"desc"}` {
		t.Fatalf("unexpected view %q ok=%v err=%v", v, ok, err)
	}
	if err := repo.DeleteView(ctx, "sort:tasks"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := repo.GetView(ctx, "sort:tasks"); ok {
		t.Fatal("expected view removed")
	}
}

func TestSQLiteUnknownEntity(t *testing.T) {
	if _, err := newTestRepo(t).Collection("widgets"); !errors.Is(err, ports.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

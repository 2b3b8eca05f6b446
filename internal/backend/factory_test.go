package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opsboard/internal/config"
	"opsboard/internal/core"
	"opsboard/internal/log"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend, Views: MemoryViews}, false},
		{"sqlite with sqlite views", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", Views: SQLiteViews}, false},
		{"unknown backend", Config{Type: "sheets", Views: MemoryViews}, true},
		{"unknown views", Config{Type: MemoryBackend, Views: "redis"}, true},
		{"sqlite without path", Config{Type: SQLiteBackend, Views: MemoryViews}, true},
		{"sqlite views on memory", Config{Type: MemoryBackend, Views: SQLiteViews}, true},
		{"file views without path", Config{Type: MemoryBackend, Views: FileViews}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "a.db", ViewStore: "sqlite"}
	got, err := FromAppConfig(cfg)
	if err != nil || got.Type != SQLiteBackend || got.Views != SQLiteViews {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}

func writeSeed(t *testing.T, dir string) {
	t.Helper()
	body := `[{"id":"t-1","title":"Logo","status":"todo"}]`
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateBackends(t *testing.T) {
	ctx := context.Background()
	seedDir := t.TempDir()
	writeSeed(t, seedDir)
	dir := t.TempDir()

	configs := map[string]Config{
		"memory/memory": {Type: MemoryBackend, Views: MemoryViews, SeedDir: seedDir},
		"memory/file":   {Type: MemoryBackend, Views: FileViews, ViewStorePath: filepath.Join(dir, "views.json"), SeedDir: seedDir},
		"sqlite/sqlite": {Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ops.db"), Views: SQLiteViews, SeedDir: seedDir},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			res, err := NewFactory(log.Discard(), nil).CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			if err := res.Ready(ctx); err != nil {
				t.Fatalf("ready: %v", err)
			}

			tasks, err := res.Store.Collection(core.EntityTasks)
			if err != nil {
				t.Fatal(err)
			}
			rows, err := tasks.List(ctx)
			if err != nil || len(rows) != 1 || rows[0].ID() != "t-1" {
				t.Fatalf("seeded rows = %v, %v", rows, err)
			}

			if err := res.Views.Set(ctx, "sort:tasks", `{"column":"title","direction":"asc"}`); err != nil {
				t.Fatalf("view set: %v", err)
			}
			if _, ok, err := res.Views.Get(ctx, "sort:tasks"); err != nil || !ok {
				t.Fatalf("view get: ok=%v err=%v", ok, err)
			}
		})
	}
}

package viewstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opsboard/internal/boards"
	"opsboard/internal/log"
)

var (
	_ boards.ViewStore = (*Memory)(nil)
	_ boards.ViewStore = (*File)(nil)
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, ok, _ := m.Get(ctx, "sort:tasks"); ok {
		t.Fatal("expected empty store")
	}
	_ = m.Set(ctx, "sort:tasks", `{"column":"title","direction":"asc"}`)
	if v, ok, _ := m.Get(ctx, "sort:tasks"); !ok || v == "" {
		t.Fatalf("expected value, got %q ok=%v", v, ok)
	}
	_ = m.Delete(ctx, "sort:tasks")
	if _, ok, _ := m.Get(ctx, "sort:tasks"); ok {
		t.Fatal("expected key deleted")
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "views.json")

	f, err := OpenFile(path, log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	board, err := boards.NewEngine(f, log.Discard()).Configure(ctx, "billing")
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if _, err := board.ToggleSort(ctx, "amount"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	reopened, err := OpenFile(path, log.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again, err := boards.NewEngine(reopened, log.Discard()).Configure(ctx, "billing")
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	got := again.SortConfig()
	if got == nil || got.Column != "amount" || got.Direction != boards.Asc {
		t.Fatalf("sort not restored: %+v", got)
	}

	if err := again.ClearSort(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	final, _ := OpenFile(path, log.Discard())
	if _, ok, _ := final.Get(ctx, boards.SortKey("billing")); ok {
		t.Fatal("expected sort key removed from file")
	}
}

func TestFileCorruptContentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := OpenFile(path, log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, _ := f.Get(context.Background(), "sort:x"); ok {
		t.Fatal("expected empty store")
	}
}

func TestOpenFileRequiresPath(t *testing.T) {
	if _, err := OpenFile("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

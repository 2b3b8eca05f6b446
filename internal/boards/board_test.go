package boards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"opsboard/internal/log"
)

type mapStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMapStore() *mapStore {
	return &mapStore{values: map[string]string{}}
}

func (m *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mapStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func TestToggleSortTwice(t *testing.T) {
	ctx := context.Background()
	b := configure(t, NewEngine(newMapStore(), log.Discard()), "billing")

	first, err := b.ToggleSort(ctx, "amount")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if first != (SortSpec{Column: "amount", Direction: Asc}) {
		t.Fatalf("first toggle = %+v, want amount asc", first)
	}

	second, err := b.ToggleSort(ctx, "amount")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second != (SortSpec{Column: "amount", Direction: Desc}) {
		t.Fatalf("second toggle = %+v, want amount desc", second)
	}

	third, _ := b.ToggleSort(ctx, "status")
	if third != (SortSpec{Column: "status", Direction: Asc}) {
		t.Fatalf("switching column = %+v, want status asc", third)
	}
}

func TestApplyPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()

	b := configure(t, NewEngine(store, log.Discard()), "tasks")
	if err := b.ApplySort(ctx, SortSpec{Column: "dueDate", Direction: Desc}); err != nil {
		t.Fatalf("apply sort: %v", err)
	}
	filters := []FilterSpec{{Column: "status", Operator: Equals, Value: "done"}}
	if err := b.ApplyFilters(ctx, filters); err != nil {
		t.Fatalf("apply filters: %v", err)
	}

	reloaded := configure(t, NewEngine(store, log.Discard()), "tasks")
	if diff := cmp.Diff(b.View(), reloaded.View()); diff != "" {
		t.Fatalf("reloaded view mismatch (-want +got):\n%s", diff)
	}

	other := configure(t, NewEngine(store, log.Discard()), "leads")
	if other.SortConfig() != nil || len(other.Filters()) != 0 {
		t.Fatalf("view leaked across boards: %+v", other.View())
	}
}

func TestClearRemovesPersistedKeys(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	b := configure(t, NewEngine(store, log.Discard()), "clients")

	_ = b.ApplySort(ctx, SortSpec{Column: "clientName", Direction: Asc})
	_ = b.ApplyFilters(ctx, []FilterSpec{{Column: "status", Operator: Equals, Value: "active"}})

	if err := b.ClearSort(ctx); err != nil {
		t.Fatalf("clear sort: %v", err)
	}
	if err := b.ClearFilters(ctx); err != nil {
		t.Fatalf("clear filters: %v", err)
	}

	if len(store.values) != 0 {
		t.Fatalf("expected persisted keys removed, got %v", store.values)
	}
	if b.SortConfig() != nil || len(b.Filters()) != 0 {
		t.Fatalf("expected default view, got %+v", b.View())
	}
}

func TestCorruptPersistedStateFallsBackToDefault(t *testing.T) {
	store := newMapStore()
	store.values[SortKey("leads")] = "{not json"
	store.values[FiltersKey("leads")] = `[{"column":"status","operator":"like","value":"x"}]`

	b := configure(t, NewEngine(store, log.Discard()), "leads")
	if b.SortConfig() != nil {
		t.Fatalf("expected no sort, got %+v", b.SortConfig())
	}
	if len(b.Filters()) != 0 {
		t.Fatalf("expected no filters, got %+v", b.Filters())
	}
}

func TestStoreReadErrorFallsBackToDefault(t *testing.T) {
	store := newMapStore()
	store.getErr = errors.New("disk gone")

	b := configure(t, NewEngine(store, log.Discard()), "tasks")
	if b.SortConfig() != nil || len(b.Filters()) != 0 {
		t.Fatalf("expected default view, got %+v", b.View())
	}
}

func TestPersistFailureKeepsInMemoryView(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.setErr = errors.New("read-only")
	b := configure(t, NewEngine(store, log.Discard()), "tasks")

	err := b.ApplySort(ctx, SortSpec{Column: "title", Direction: Asc})
	if err == nil {
		t.Fatal("expected persist error")
	}
	if b.SortConfig() == nil || b.SortConfig().Column != "title" {
		t.Fatalf("in-memory sort not applied: %+v", b.SortConfig())
	}
}

func TestApplyRejectsInvalidSpecs(t *testing.T) {
	ctx := context.Background()
	b := configure(t, NewEngine(newMapStore(), log.Discard()), "tasks")

	if err := b.ApplySort(ctx, SortSpec{Column: "title", Direction: "up"}); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if err := b.ApplyFilters(ctx, []FilterSpec{{Column: "title", Operator: "regex"}}); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
	if _, err := b.ToggleSort(ctx, " "); !errors.Is(err, ErrEmptyColumn) {
		t.Fatalf("expected ErrEmptyColumn, got %v", err)
	}
}

func configure(t *testing.T, e *Engine, key string) *Board {
	t.Helper()
	b, err := e.Configure(context.Background(), key)
	if err != nil {
		t.Fatalf("configure %s: %v", key, err)
	}
	return b
}

func TestConfigureReturnsSameBoard(t *testing.T) {
	e := NewEngine(newMapStore(), log.Discard())
	if configure(t, e, "tasks") != configure(t, e, "tasks") {
		t.Fatal("expected cached board per key")
	}
}

func TestConfigureRejectsUnknownBoard(t *testing.T) {
	e := NewEngine(newMapStore(), log.Discard())
	for _, key := range []string{"", "widgets", "tasks/../leads"} {
		if b, err := e.Configure(context.Background(), key); !errors.Is(err, ErrUnknownBoard) || b != nil {
			t.Fatalf("Configure(%q) = %v, %v; want ErrUnknownBoard", key, b, err)
		}
	}
	if n := len(e.boards); n != 0 {
		t.Fatalf("unknown keys must not be retained, got %d boards", n)
	}
}

func TestRowsUsesCurrentView(t *testing.T) {
	ctx := context.Background()
	b := configure(t, NewEngine(nil, log.Discard()), "billing")
	_ = b.ApplySort(ctx, SortSpec{Column: "amount", Direction: Desc})

	rows := b.Rows(sampleRows())
	if diff := cmp.Diff([]string{"1", "2", "4", "3", "5"}, ids(rows.SortedData)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if rows.SortConfig == nil || rows.SortConfig.Direction != Desc {
		t.Fatalf("unexpected sort config %+v", rows.SortConfig)
	}
}

package boards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"opsboard/internal/core"
	"opsboard/internal/log"
)

// ViewStore persists serialized board configuration by key.
type ViewStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SortKey and FiltersKey are the ViewStore keys used for a board.
func SortKey(board string) string    { return "sort:" + board }
func FiltersKey(board string) string { return "filters:" + board }

// ErrUnknownBoard is returned for board keys that name no entity.
var ErrUnknownBoard = errors.New("unknown board")

// Engine hands out one Board per board key, loading the persisted view the
// first time a key is configured.
type Engine struct {
	store  ViewStore
	logger *log.Logger

	mu     sync.Mutex
	boards map[string]*Board
}

func NewEngine(store ViewStore, logger *log.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: log.OrDefault(logger, log.ComponentBoard),
		boards: make(map[string]*Board),
	}
}

// Configure returns the board for key. Boards exist only for known entities,
// which keeps the set of live boards bounded. Persisted state that cannot be
// read or decoded is logged and replaced by the default view.
func (e *Engine) Configure(ctx context.Context, key string) (*Board, error) {
	if !core.IsEntity(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.boards[key]; ok {
		return b, nil
	}
	b := &Board{key: key, store: e.store, logger: e.logger.With(log.FieldBoard, key)}
	b.load(ctx)
	e.boards[key] = b
	return b, nil
}

// Board is the live sort/filter state of a single board.
type Board struct {
	key    string
	store  ViewStore
	logger *log.Logger

	mu      sync.RWMutex
	sort    *SortSpec
	filters []FilterSpec
}

// View is a snapshot of a board's configuration.
type View struct {
	SortConfig *SortSpec    `json:"sortConfig"`
	Filters    []FilterSpec `json:"filters"`
}

// Rows is what a board renders: the visible rows plus the view that produced them.
type Rows struct {
	SortedData []core.Record `json:"sortedData"`
	View
}

// SortConfig returns a copy of the active sort, or nil for natural order.
func (b *Board) SortConfig() *SortSpec {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sort == nil {
		return nil
	}
	s := *b.sort
	return &s
}

// Filters returns a copy of the active filter set.
func (b *Board) Filters() []FilterSpec {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]FilterSpec{}, b.filters...)
}

// View returns the current configuration.
func (b *Board) View() View {
	return View{SortConfig: b.SortConfig(), Filters: b.Filters()}
}

// SortedData filters then sorts records with the board's current view.
func (b *Board) SortedData(records []core.Record) []core.Record {
	b.mu.RLock()
	sortSpec, filters := b.sort, b.filters
	b.mu.RUnlock()
	return Apply(records, sortSpec, filters)
}

// Rows bundles SortedData with the view used.
func (b *Board) Rows(records []core.Record) Rows {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var s *SortSpec
	if b.sort != nil {
		c := *b.sort
		s = &c
	}
	return Rows{
		SortedData: Apply(records, b.sort, b.filters),
		View:       View{SortConfig: s, Filters: append([]FilterSpec{}, b.filters...)},
	}
}

// ApplySort makes spec the active sort and persists it.
func (b *Board) ApplySort(ctx context.Context, spec SortSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	b.sort = &spec
	b.mu.Unlock()
	return b.persist(ctx, SortKey(b.key), spec)
}

// ToggleSort flips the direction when column is already the sort column,
// otherwise sorts ascending by column.
func (b *Board) ToggleSort(ctx context.Context, column string) (SortSpec, error) {
	b.mu.Lock()
	next := SortSpec{Column: column, Direction: Asc}
	if b.sort != nil && b.sort.Column == column {
		next.Direction = b.sort.Direction.Flip()
	}
	if err := next.Validate(); err != nil {
		b.mu.Unlock()
		return SortSpec{}, err
	}
	b.sort = &next
	b.mu.Unlock()
	return next, b.persist(ctx, SortKey(b.key), next)
}

// ApplyFilters replaces the filter set and persists it.
func (b *Board) ApplyFilters(ctx context.Context, specs []FilterSpec) error {
	if err := ValidateFilters(specs); err != nil {
		return err
	}
	filters := append([]FilterSpec{}, specs...)
	b.mu.Lock()
	b.filters = filters
	b.mu.Unlock()
	return b.persist(ctx, FiltersKey(b.key), filters)
}

// ClearSort returns the board to natural order and forgets the persisted sort.
func (b *Board) ClearSort(ctx context.Context) error {
	b.mu.Lock()
	b.sort = nil
	b.mu.Unlock()
	return b.remove(ctx, SortKey(b.key))
}

// ClearFilters drops every filter and forgets the persisted set.
func (b *Board) ClearFilters(ctx context.Context) error {
	b.mu.Lock()
	b.filters = nil
	b.mu.Unlock()
	return b.remove(ctx, FiltersKey(b.key))
}

func (b *Board) persist(ctx context.Context, key string, v any) error {
	if b.store == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, string(raw)); err != nil {
		b.logger.WarnContext(ctx, "Failed to persist board view", "key", key, log.FieldError, err)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (b *Board) remove(ctx context.Context, key string) error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Delete(ctx, key); err != nil {
		b.logger.WarnContext(ctx, "Failed to remove board view", "key", key, log.FieldError, err)
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (b *Board) load(ctx context.Context) {
	if b.store == nil {
		return
	}

	var s SortSpec
	if b.read(ctx, SortKey(b.key), &s) {
		if err := s.Validate(); err != nil {
			b.logger.WarnContext(ctx, "Ignoring persisted sort", log.FieldError, err)
		} else {
			b.sort = &s
		}
	}

	var filters []FilterSpec
	if b.read(ctx, FiltersKey(b.key), &filters) {
		if err := ValidateFilters(filters); err != nil {
			b.logger.WarnContext(ctx, "Ignoring persisted filters", log.FieldError, err)
		} else {
			b.filters = filters
		}
	}
}

func (b *Board) read(ctx context.Context, key string, dst any) bool {
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read persisted board view", "key", key, log.FieldError, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		b.logger.WarnContext(ctx, "Corrupt persisted board view, using defaults", "key", key, log.FieldError, err)
		return false
	}
	return true
}

// Package memory is an in-process record store used for demos and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/core"
	"opsboard/internal/ports"
	"opsboard/internal/schema"
)

// Store keeps one collection per known entity.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
	validator   *schema.Validator
	now         func() time.Time
}

var (
	_ ports.Store      = (*Store)(nil)
	_ ports.Collection = (*Collection)(nil)
)

// New returns an empty store. validator may be nil.
func New(validator *schema.Validator) *Store {
	s := &Store{
		collections: make(map[string]*Collection),
		validator:   validator,
		now:         time.Now,
	}
	for _, e := range core.Entities {
		s.collections[e] = &Collection{entity: e, store: s, index: make(map[string]int)}
	}
	return s
}

// NewFromFiles seeds collections from <base>/<entity>.json arrays when present.
// Missing files leave the collection empty.
func NewFromFiles(base string, validator *schema.Validator) (*Store, error) {
	s := New(validator)
	for _, e := range core.Entities {
		raw, err := os.ReadFile(filepath.Join(base, e+".json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", e, err)
		}
		var rows []core.Record
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode seed %s: %w", e, err)
		}
		c := s.collections[e]
		for _, r := range rows {
			c.insert(s.stamp(r))
		}
	}
	return s, nil
}

func (s *Store) Collection(entity string) (ports.Collection, error) {
	c, ok := s.collections[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrUnknownEntity, entity)
	}
	return c, nil
}

func (s *Store) stamp(fields core.Record) core.Record {
	r := fields.Clone()
	if r == nil {
		r = core.Record{}
	}
	if r.ID() == "" {
		r[core.FieldID] = uuid.NewString()
	}
	if !r.Has("created_at") {
		r["created_at"] = s.now().UTC().Format(time.RFC3339)
	}
	return r
}

// Collection holds the rows of one entity in insertion order.
type Collection struct {
	entity string
	store  *Store
	rows   []core.Record
	index  map[string]int
}

func (c *Collection) insert(r core.Record) {
	c.index[r.ID()] = len(c.rows)
	c.rows = append(c.rows, r)
}

func (c *Collection) List(_ context.Context) ([]core.Record, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return core.CloneAll(c.rows), nil
}

func (c *Collection) Get(_ context.Context, id string) (core.Record, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	return c.rows[i].Clone(), nil
}

func (c *Collection) Create(_ context.Context, fields core.Record) (core.Record, error) {
	if err := c.store.validator.Validate(c.entity, fields); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	r := c.store.stamp(fields)
	if _, dup := c.index[r.ID()]; dup {
		return nil, fmt.Errorf("%s %s already exists", c.entity, r.ID())
	}
	c.insert(r)
	return r.Clone(), nil
}

func (c *Collection) Update(_ context.Context, id string, fields core.Record) error {
	if err := c.store.validator.ValidatePartial(c.entity, fields); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	merged := c.rows[i].Merge(fields)
	merged[core.FieldID] = id
	merged["updated_at"] = c.store.now().UTC().Format(time.RFC3339)
	c.rows[i] = merged
	return nil
}

func (c *Collection) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.rows); j++ {
		c.index[c.rows[j].ID()] = j
	}
	return nil
}

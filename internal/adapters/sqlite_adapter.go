package adapters

import (
	"context"

	"opsboard/internal/boards"
)

// ViewRepository is the subset of storage.SQLiteRepository that persists board views.
type ViewRepository interface {
	GetView(ctx context.Context, key string) (string, bool, error)
	SetView(ctx context.Context, key, value string) error
	DeleteView(ctx context.Context, key string) error
}

// SQLiteViewStore adapts the SQLite repository to boards.ViewStore so sort and
// filter state survives restarts alongside the records it describes.
type SQLiteViewStore struct {
	repo ViewRepository
}

var _ boards.ViewStore = (*SQLiteViewStore)(nil)

func NewSQLiteViewStore(repo ViewRepository) *SQLiteViewStore {
	return &SQLiteViewStore{repo: repo}
}

// Get implements boards.ViewStore
func (a *SQLiteViewStore) Get(ctx context.Context, key string) (string, bool, error) {
	return a.repo.GetView(ctx, key)
}

// Set implements boards.ViewStore
func (a *SQLiteViewStore) Set(ctx context.Context, key, value string) error {
	return a.repo.SetView(ctx, key, value)
}

// Delete implements boards.ViewStore
func (a *SQLiteViewStore) Delete(ctx context.Context, key string) error {
	return a.repo.DeleteView(ctx, key)
}

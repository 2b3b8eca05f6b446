package backend

import (
	"context"

	"opsboard/internal/boards"
	"opsboard/internal/ports"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles the record store and board view store built from configuration.
type Result struct {
	Store ports.Store
	Views boards.ViewStore
	// Ready reports whether the backend can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config selects and configures the record store and the view store.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	// SeedDir optionally holds <entity>.json arrays loaded at startup.
	SeedDir string

	Views         ViewStoreType
	ViewStorePath string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

type ViewStoreType string

const (
	MemoryViews ViewStoreType = "memory"
	FileViews   ViewStoreType = "file"
	SQLiteViews ViewStoreType = "sqlite"
)

func (vt ViewStoreType) IsValid() bool {
	switch vt {
	case MemoryViews, FileViews, SQLiteViews:
		return true
	}
	return false
}

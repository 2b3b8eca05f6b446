package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"opsboard/internal/adapters"
	"opsboard/internal/boards"
	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/schema"
	"opsboard/internal/storage"
	"opsboard/internal/storage/memory"
	"opsboard/internal/viewstate"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger    *log.Logger
	validator *schema.Validator
}

func NewFactory(logger *log.Logger, validator *schema.Validator) Factory {
	return &DefaultFactory{
		logger:    log.OrDefault(logger, log.ComponentStorage),
		validator: validator,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res  *Result
		repo *storage.SQLiteRepository
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		res, repo, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	views, err := f.createViewStore(config, repo)
	if err != nil {
		if res.Cleanup != nil {
			res.Cleanup()
		}
		return nil, err
	}
	res.Views = views
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, *storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.validator, f.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedDir != "" {
		for _, entity := range core.Entities {
			rows, err := readSeed(config.SeedDir, entity)
			if err != nil {
				repo.Close()
				return nil, nil, err
			}
			if err := repo.Seed(ctx, entity, rows); err != nil {
				repo.Close()
				return nil, nil, fmt.Errorf("seed %s: %w", entity, err)
			}
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, repo, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	var (
		store *memory.Store
		err   error
	)
	if config.SeedDir != "" {
		store, err = memory.NewFromFiles(config.SeedDir, f.validator)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory backend: %w", err)
		}
	} else {
		store = memory.New(f.validator)
	}

	f.logger.Info("Initialized memory backend", "seed_dir", config.SeedDir)
	return &Result{
		Store: store,
		Ready: func(context.Context) error { return nil },
	}, nil
}

func (f *DefaultFactory) createViewStore(config Config, repo *storage.SQLiteRepository) (boards.ViewStore, error) {
	switch config.Views {
	case SQLiteViews:
		return adapters.NewSQLiteViewStore(repo), nil
	case FileViews:
		return viewstate.OpenFile(config.ViewStorePath, f.logger.WithComponent(log.ComponentViewState))
	default:
		return viewstate.NewMemory(), nil
	}
}

func readSeed(dir, entity string) ([]core.Record, error) {
	raw, err := os.ReadFile(filepath.Join(dir, entity+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", entity, err)
	}
	var rows []core.Record
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", entity, err)
	}
	return rows, nil
}

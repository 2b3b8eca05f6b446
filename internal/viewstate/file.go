package viewstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"opsboard/internal/log"
)

// File keeps every board view in a single JSON object on disk. Each change
// rewrites the file through a temp file and rename.
type File struct {
	path   string
	logger *log.Logger

	mu     sync.Mutex
	values map[string]string
}

// OpenFile loads path if it exists. An unreadable or corrupt file is logged
// and treated as empty; the next write replaces it.
func OpenFile(path string, logger *log.Logger) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("view store path is empty")
	}
	f := &File{
		path:   path,
		logger: log.OrDefault(logger, log.ComponentViewState),
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read view store: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.values); err != nil {
		f.logger.Warn("Corrupt view store file, starting empty", "path", path, log.FieldError, err)
		f.values = make(map[string]string)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create view store dir: %w", err)
	}
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode view store: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".views-*.json")
	if err != nil {
		return fmt.Errorf("create temp view store: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write view store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close view store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace view store: %w", err)
	}
	return nil
}

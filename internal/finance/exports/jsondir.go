// Package exports reads bookkeeping exports into a finance.Dataset.
package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"opsboard/internal/core"
	"opsboard/internal/finance"
	"opsboard/internal/log"
)

// JSONDirSource reads <dir>/<export>.json files, each holding a JSON array.
type JSONDirSource struct {
	dir    string
	logger *log.Logger
}

var _ finance.Source = (*JSONDirSource)(nil)

func NewJSONDirSource(dir string, logger *log.Logger) *JSONDirSource {
	return &JSONDirSource{dir: dir, logger: log.OrDefault(logger, log.ComponentExports)}
}

// Fetch reads the four exports concurrently. A missing file is an empty array.
func (s *JSONDirSource) Fetch(ctx context.Context) (finance.Dataset, error) {
	return fetchAll(ctx, func(ctx context.Context, name string) ([]core.Record, error) {
		return s.read(name)
	})
}

func (s *JSONDirSource) read(name string) ([]core.Record, error) {
	path := filepath.Join(s.dir, name+".json")
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("Export file missing, using empty array", "path", path)
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rows []core.Record
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

type fetchFunc func(ctx context.Context, export string) ([]core.Record, error)

// fetchAll runs fetch for every export in parallel and merges the results.
func fetchAll(ctx context.Context, fetch fetchFunc) (finance.Dataset, error) {
	results := make([][]core.Record, len(finance.Exports))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range finance.Exports {
		g.Go(func() error {
			rows, err := fetch(gctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return finance.Dataset{}, err
	}

	var ds finance.Dataset
	for i, name := range finance.Exports {
		ds.Set(name, results[i])
	}
	return ds, nil
}

package exports

import (
	"context"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/finance"
	"opsboard/internal/log"
)

const (
	datasetKey = "dataset"

	// fetchTimeout bounds a shared load now that it no longer follows any
	// single caller's context.
	fetchTimeout = 30 * time.Second
)

// CachedSource memoises the dataset of another source for a TTL.
type CachedSource struct {
	source finance.Source
	cache  *cache.LRUCache[finance.Dataset]
	logger *log.Logger
}

var _ finance.Source = (*CachedSource)(nil)

func NewCachedSource(source finance.Source, ttl time.Duration, logger *log.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache.NewLRUCache[finance.Dataset](1, ttl),
		logger: log.OrDefault(logger, log.ComponentCache),
	}
}

// Cache exposes the underlying cache so it can be registered for periodic cleanup.
func (c *CachedSource) Cache() *cache.LRUCache[finance.Dataset] {
	return c.cache
}

// Fetch returns the cached dataset, loading it on a miss. Concurrent misses
// share one load, which keeps the first caller's values but not its
// cancellation, so one client going away does not fail the others.
func (c *CachedSource) Fetch(ctx context.Context) (finance.Dataset, error) {
	return c.cache.GetOrLoad(datasetKey, func() (finance.Dataset, error) {
		c.logger.DebugContext(ctx, "Finance dataset cache miss")
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return c.source.Fetch(loadCtx)
	})
}

// Invalidate drops the cached dataset so the next Fetch reloads it.
func (c *CachedSource) Invalidate() {
	c.cache.Delete(datasetKey)
}

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Cached returns a single value stored under (Namespace, name), calling fetch
// when it is absent, expired or undecodable. Like CachedArray, a failed store
// is logged and the fresh value is still returned.
func Cached[T any](ctx context.Context, c *Cache, name string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, ok, err := load[T](ctx, c, valueKey(name), c.now())
	if err != nil {
		slog.Warn("Cache value unreadable", "name", name, "error", err)
	}
	if ok {
		slog.Debug("Cache hit", "name", name)
		return value, nil
	}

	slog.Debug("Cache miss", "name", name)
	return shared(ctx, c, "value:"+name, func(ctx context.Context) (T, error) {
		fetchCtx, cancel := c.fetchContext(ctx)
		value, err := fetch(fetchCtx)
		cancel()
		if err != nil {
			return value, fmt.Errorf("failed to refresh %q: %w", name, err)
		}

		if err := c.store(ctx, valueKey(name), value, c.now().Add(ttl)); err != nil {
			slog.Warn("Cache value not stored", "name", name, "error", err)
		}
		return value, nil
	})
}

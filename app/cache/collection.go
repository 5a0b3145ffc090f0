package cache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// KeyFunc extracts an item's key. It must be injective over one fetched array.
type KeyFunc[T any] func(item T) string

// FetchFunc returns the authoritative, uncached contents of a collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// CachedArray returns the named collection from the cache, refetching it when
// the index is missing or expired, or when any item it lists cannot be read.
//
// A fetcher error is returned as is and nothing is stored. Storage failures
// are logged and never returned: the caller always gets the full fetched array.
func CachedArray[T any](ctx context.Context, c *Cache, collection string, ttl time.Duration, keyFn KeyFunc[T], fetch FetchFunc[T]) ([]T, error) {
	if items, ok := readCollection[T](ctx, c, collection); ok {
		return items, nil
	}

	items, err := shared(ctx, c, "collection:"+collection, func(ctx context.Context) ([]T, error) {
		return refreshCollection(ctx, c, collection, ttl, keyFn, fetch)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func readCollection[T any](ctx context.Context, c *Cache, collection string) ([]T, bool) {
	now := c.now()

	keys, ok, err := load[[]string](ctx, c, indexKey(collection), now)
	if err != nil {
		slog.Warn("Cache index unreadable", "collection", collection, "error", err)
		return nil, false
	}
	if !ok {
		slog.Debug("Cache miss", "collection", collection)
		return nil, false
	}

	items := make([]T, len(keys))
	present := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			item, ok, err := load[T](gctx, c, itemKey(collection, key), now)
			if err != nil {
				slog.Debug("Cache item unreadable", "collection", collection, "key", key, "error", err)
				return nil
			}
			items[i] = item
			present[i] = ok
			return nil
		})
	}
	g.Wait()

	if slices.Contains(present, false) {
		slog.Info("Cache partial hit, refetching", "collection", collection, "items", len(keys))
		return nil, false
	}

	slog.Debug("Cache hit", "collection", collection, "items", len(keys))
	return items, true
}

func refreshCollection[T any](ctx context.Context, c *Cache, collection string, ttl time.Duration, keyFn KeyFunc[T], fetch FetchFunc[T]) ([]T, error) {
	fetchCtx, cancel := c.fetchContext(ctx)
	items, err := fetch(fetchCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh collection %q: %w", collection, err)
	}

	expiresAt := c.now().Add(ttl)
	stored := storeItems(ctx, c, collection, items, keyFn, expiresAt)

	// An empty fetch still gets an (empty) index so the next read is a hit.
	if len(stored) == 0 && len(items) > 0 {
		slog.Warn("Cache index skipped, no items stored", "collection", collection, "items", len(items))
		return items, nil
	}

	if err := c.store(ctx, indexKey(collection), stored, expiresAt); err != nil {
		slog.Warn("Cache index not stored", "collection", collection, "error", err)
		return items, nil
	}

	slog.Info("Cache refreshed",
		"collection", collection,
		"items", len(items),
		"stored", len(stored),
		"expires_at", expiresAt.Format(time.RFC3339))

	return items, nil
}

// storeItems writes every item concurrently and returns the keys that were
// stored, in fetch order. It returns only after every attempt has settled.
func storeItems[T any](ctx context.Context, c *Cache, collection string, items []T, keyFn KeyFunc[T], expiresAt time.Time) []string {
	keys := make([]string, len(items))
	stored := make([]bool, len(items))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, item := range items {
		g.Go(func() error {
			key := keyFn(item)
			keys[i] = key

			if key == indexSegment {
				slog.Warn("Cache item skipped, reserved key", "collection", collection, "key", key)
				return nil
			}
			if err := c.store(ctx, itemKey(collection, key), item, expiresAt); err != nil {
				slog.Warn("Cache item skipped", "collection", collection, "key", key, "error", err)
				return nil
			}
			stored[i] = true
			return nil
		})
	}
	g.Wait()

	result := make([]string, 0, len(items))
	for i, ok := range stored {
		if ok {
			result = append(result, keys[i])
		}
	}
	return result
}

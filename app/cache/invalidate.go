package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/4ster-light/site/app/database"
)

// Invalidate removes the single value stored under name along with the index
// and every item of the collection called name. Absent keys are not an error.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	slog.Info("Cache invalidate", "name", name)

	errs := make(chan error, 2)
	go func() {
		errs <- c.repo.DeleteEntry(ctx, valueKey(name))
	}()
	go func() {
		_, err := c.deletePrefix(ctx, database.Key{Namespace, name})
		errs <- err
	}()

	return errors.Join(<-errs, <-errs)
}

// InvalidateAll removes every key under the namespace and returns how many
// were deleted.
func (c *Cache) InvalidateAll(ctx context.Context) (int, error) {
	slog.Info("Cache invalidate all")

	count, err := c.deletePrefix(ctx, database.Key{Namespace})
	if err != nil {
		return count, err
	}

	slog.Info("Cache cleared", "deleted", count)
	return count, nil
}

func (c *Cache) deletePrefix(ctx context.Context, prefix database.Key) (int, error) {
	count := 0
	for key, err := range c.repo.ListKeys(ctx, prefix) {
		if err != nil {
			return count, fmt.Errorf("failed to list keys under %s: %w", prefix, err)
		}
		if err := c.repo.DeleteEntry(ctx, key); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Package cache stores expensive remote collections in an EntryRepository.
//
// Each collection item is compressed and stored under its own key, and an
// index entry lists the keys written by the last successful refresh. Reads
// trust the index only when every item it names can still be read back;
// anything less triggers a full refetch. The fetched result is always
// returned to the caller, whether or not it could be cached.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/4ster-light/site/app/database"
	"golang.org/x/sync/singleflight"
)

// Namespace is the top-level key segment isolating cache entries from other
// data in the shared store.
const Namespace = "cache"

// indexSegment names the index entry of a collection. Items may not use it as
// their key.
const indexSegment = "_index"

const defaultConcurrency = 8

type Cache struct {
	repo         database.EntryRepository
	now          func() time.Time
	concurrency  int
	fetchTimeout time.Duration
	group        singleflight.Group
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithConcurrency bounds the number of concurrent store calls per collection.
// Values < 1 are ignored.
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithFetchTimeout bounds each fetcher call. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.fetchTimeout = d
	}
}

func New(repo database.EntryRepository, opts ...Option) *Cache {
	c := &Cache{
		repo:        repo,
		now:         time.Now,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the number of entries under the namespace.
func (c *Cache) Size(ctx context.Context) (int, error) {
	return c.repo.CountKeys(ctx, database.Key{Namespace})
}

func valueKey(name string) database.Key {
	return database.Key{Namespace, name}
}

func indexKey(collection string) database.Key {
	return database.Key{Namespace, collection, indexSegment}
}

func itemKey(collection, key string) database.Key {
	return database.Key{Namespace, collection, key}
}

// store compresses value and writes it under key.
func (c *Cache) store(ctx context.Context, key database.Key, value any, expiresAt time.Time) error {
	payload, err := Compress(value)
	if err != nil {
		return err
	}
	return c.repo.SetEntry(ctx, key, database.Entry{Payload: payload, ExpiresAt: expiresAt})
}

// load reads and decodes the entry under key. ok is false when the entry is
// absent, expired, unreadable or undecodable.
func load[T any](ctx context.Context, c *Cache, key database.Key, now time.Time) (value T, ok bool, err error) {
	entry, err := c.repo.GetEntry(ctx, key)
	if err != nil {
		return value, false, err
	}
	if entry == nil || entry.Expired(now) {
		return value, false, nil
	}

	value, err = Decompress[T](entry.Payload)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

func (c *Cache) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.fetchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.fetchTimeout)
}

// shared runs fn once per flight key and type-checks the shared result.
// The flight runs detached from any one caller's cancellation, bounded only by
// the fetch timeout; each caller stops waiting when its own ctx is done.
func shared[T any](ctx context.Context, c *Cache, flight string, fn func(ctx context.Context) (T, error)) (T, error) {
	ch := c.group.DoChan(flight, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	var result T
	select {
	case <-ctx.Done():
		return result, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return result, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return result, fmt.Errorf("cache %q shared by callers of different types", flight)
		}
		return v, nil
	}
}

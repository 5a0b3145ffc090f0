package database

import (
	"context"
	"iter"
)

// EntryRepository is the key-value substrate the cache persists to.
//
// Implementations must be safe for concurrent use. A failed SetEntry never
// affects other in-flight calls, so callers may log and ignore it.
type EntryRepository interface {
	// GetEntry returns nil, nil when the key is absent.
	GetEntry(ctx context.Context, key Key) (*Entry, error)
	// SetEntry upserts the entry. Oversized payloads fail with ErrEntryTooLarge.
	SetEntry(ctx context.Context, key Key, entry Entry) error
	// DeleteEntry is idempotent; deleting an absent key is not an error.
	DeleteEntry(ctx context.Context, key Key) error
	// ListKeys lazily yields every key strictly under prefix in ascending order.
	// The sequence is one-shot. Callers may delete yielded keys while draining it.
	ListKeys(ctx context.Context, prefix Key) iter.Seq2[Key, error]
	CountKeys(ctx context.Context, prefix Key) (int, error)
	Close() error
}

package database

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
)

var _ EntryRepository = (*MemoryEntryRepository)(nil)

// MemoryEntryRepository keeps entries in process memory. Contents are lost on
// restart.
type MemoryEntryRepository struct {
	entries      map[string]Entry
	maxEntrySize int
	mu           sync.RWMutex
}

func NewMemoryEntryRepository(maxEntrySize int) *MemoryEntryRepository {
	return &MemoryEntryRepository{
		entries:      make(map[string]Entry),
		maxEntrySize: maxEntrySize,
	}
}

func (r *MemoryEntryRepository) GetEntry(ctx context.Context, key Key) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key.Encode()]
	if !ok {
		return nil, nil
	}
	return &Entry{
		Payload:   slices.Clone(entry.Payload),
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

func (r *MemoryEntryRepository) SetEntry(ctx context.Context, key Key, entry Entry) error {
	if err := checkEntry(key, entry, r.maxEntrySize); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key.Encode()] = Entry{
		Payload:   slices.Clone(entry.Payload),
		ExpiresAt: entry.ExpiresAt,
	}
	return nil
}

func (r *MemoryEntryRepository) DeleteEntry(ctx context.Context, key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key.Encode())
	return nil
}

// ListKeys snapshots the matching keys when iteration starts.
func (r *MemoryEntryRepository) ListKeys(ctx context.Context, prefix Key) iter.Seq2[Key, error] {
	return func(yield func(Key, error) bool) {
		for _, encoded := range r.matching(prefix) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(ParseKey(encoded), nil) {
				return
			}
		}
	}
}

func (r *MemoryEntryRepository) CountKeys(ctx context.Context, prefix Key) (int, error) {
	return len(r.matching(prefix)), nil
}

func (r *MemoryEntryRepository) Close() error {
	return nil
}

func (r *MemoryEntryRepository) matching(prefix Key) []string {
	lower, _ := prefix.bounds()

	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for encoded := range r.entries {
		if strings.HasPrefix(encoded, lower) {
			keys = append(keys, encoded)
		}
	}
	slices.Sort(keys)
	return keys
}

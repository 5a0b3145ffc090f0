package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"
)

const defaultListPageSize = 100

var _ EntryRepository = (*SQLiteEntryRepository)(nil)

// SQLiteEntryRepository stores cache entries in the cache_entries table.
type SQLiteEntryRepository struct {
	db           *DB
	maxEntrySize int
	pageSize     int
}

// NewSQLiteEntryRepository creates a repository over db. A maxEntrySize of 0
// disables the payload size limit.
func NewSQLiteEntryRepository(db *DB, maxEntrySize int) *SQLiteEntryRepository {
	return &SQLiteEntryRepository{
		db:           db,
		maxEntrySize: maxEntrySize,
		pageSize:     defaultListPageSize,
	}
}

func (r *SQLiteEntryRepository) GetEntry(ctx context.Context, key Key) (*Entry, error) {
	var payload []byte
	var expiresAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT payload, expires_at
		FROM cache_entries
		WHERE key = ?
	`, key.Encode()).Scan(&payload, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s: %w", key, err)
	}

	return &Entry{
		Payload:   payload,
		ExpiresAt: time.UnixMilli(expiresAt),
	}, nil
}

func (r *SQLiteEntryRepository) SetEntry(ctx context.Context, key Key, entry Entry) error {
	if err := checkEntry(key, entry, r.maxEntrySize); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, payload, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key.Encode(), entry.Payload, entry.ExpiresAt.UnixMilli(), time.Now().UnixMilli())

	if err != nil {
		return fmt.Errorf("failed to set entry %s: %w", key, err)
	}

	return nil
}

func (r *SQLiteEntryRepository) DeleteEntry(ctx context.Context, key Key) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key.Encode())
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", key, err)
	}
	return nil
}

// ListKeys pages through the prefix range with keyset pagination. Each page is
// read completely and its rows closed before any key is yielded.
func (r *SQLiteEntryRepository) ListKeys(ctx context.Context, prefix Key) iter.Seq2[Key, error] {
	return func(yield func(Key, error) bool) {
		cursor, upper := prefix.bounds()

		for {
			keys, err := r.listPage(ctx, cursor, upper)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, encoded := range keys {
				if !yield(ParseKey(encoded), nil) {
					return
				}
			}

			if len(keys) < r.pageSize {
				return
			}
			cursor = keys[len(keys)-1]
		}
	}
}

func (r *SQLiteEntryRepository) CountKeys(ctx context.Context, prefix Key) (int, error) {
	lower, upper := prefix.bounds()

	var count int
	var err error
	if upper == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE key > ?`, lower).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE key > ? AND key < ?`, lower, upper).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count keys under %s: %w", prefix, err)
	}

	return count, nil
}

func (r *SQLiteEntryRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteEntryRepository) listPage(ctx context.Context, after, upper string) ([]string, error) {
	var rows *sql.Rows
	var err error

	if upper == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT key FROM cache_entries
			WHERE key > ?
			ORDER BY key
			LIMIT ?
		`, after, r.pageSize)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT key FROM cache_entries
			WHERE key > ? AND key < ?
			ORDER BY key
			LIMIT ?
		`, after, upper, r.pageSize)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, r.pageSize)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}

	return keys, nil
}

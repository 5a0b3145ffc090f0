package database

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEntryTooLarge = errors.New("entry exceeds maximum size")
	ErrInvalidKey    = errors.New("invalid key")
)

// Entry is one stored unit: an opaque payload plus an absolute expiry deadline.
// The store never expires entries itself; ExpiresAt is interpreted by readers.
type Entry struct {
	Payload   []byte
	ExpiresAt time.Time
}

func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Key is a tuple of non-empty segments. Keys sort and match prefixes segment-wise.
type Key []string

const keySeparator = "\x1f"

// upperSeparator is the byte immediately after keySeparator, used as the
// exclusive upper bound of a prefix range.
const upperSeparator = "\x20"

func (k Key) Encode() string {
	return strings.Join(k, keySeparator)
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

func (k Key) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	for i, segment := range k {
		if segment == "" {
			return fmt.Errorf("%w: segment %d is empty", ErrInvalidKey, i)
		}
		if strings.Contains(segment, keySeparator) {
			return fmt.Errorf("%w: segment %d contains a reserved character", ErrInvalidKey, i)
		}
	}
	return nil
}

func ParseKey(encoded string) Key {
	if encoded == "" {
		return nil
	}
	return Key(strings.Split(encoded, keySeparator))
}

// bounds returns the encoded range [lower, upper) holding every key strictly
// under the prefix. An empty upper means the range is unbounded.
func (k Key) bounds() (lower, upper string) {
	if len(k) == 0 {
		return "", ""
	}
	encoded := k.Encode()
	return encoded + keySeparator, encoded + upperSeparator
}

func checkEntry(key Key, entry Entry, maxEntrySize int) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if maxEntrySize > 0 && len(entry.Payload) > maxEntrySize {
		return fmt.Errorf("%w: %d bytes for key %s (limit %d)", ErrEntryTooLarge, len(entry.Payload), key, maxEntrySize)
	}
	return nil
}

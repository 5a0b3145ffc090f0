package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var ErrDecode = errors.New("failed to decode cache payload")

// DecodeError reports a payload that is not a valid gzip stream or does not
// hold valid JSON for the requested type.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// Compress serializes v as JSON and gzips the result.
func Compress(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress value: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress value: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress is the inverse of Compress.
func Decompress[T any](data []byte) (T, error) {
	var value T

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return value, &DecodeError{Err: err}
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return value, &DecodeError{Err: err}
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, &DecodeError{Err: err}
	}

	return value, nil
}

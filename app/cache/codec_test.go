package cache

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	value := []item{{ID: "a", Title: strings.Repeat("long title ", 200)}, {ID: "b"}}

	data, err := Compress(value)
	require.NoError(t, err)
	assert.Less(t, len(data), len(value[0].Title), "repetitive payloads should shrink")

	got, err := Decompress[[]item](data)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestDecompressInvalidStream(t *testing.T) {
	_, err := Decompress[[]string]([]byte("definitely not gzip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecompressInvalidJSON(t *testing.T) {
	data, err := Compress("just a string")
	require.NoError(t, err)

	_, err = Decompress[[]string](data)
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecompressTruncatedStream(t *testing.T) {
	data, err := Compress([]string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = Decompress[[]string](bytes.Clone(data[:len(data)-4]))
	require.ErrorIs(t, err, ErrDecode)
}

func TestCompressUnsupportedValue(t *testing.T) {
	_, err := Compress(make(chan int))
	require.Error(t, err)
}

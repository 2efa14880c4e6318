package sizing

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToInt32(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 1, math.MaxInt32} {
		got, err := ToInt32(n, errOverflow)
		require.NoError(t, err)
		assert.Equal(t, int64(got), n)
	}
	for _, n := range []int64{-1, math.MaxInt32 + 1, math.MaxInt64} {
		_, err := ToInt32(n, errOverflow)
		require.ErrorIs(t, err, errOverflow, "n=%d", n)
	}
}

func TestAddInt32(t *testing.T) {
	t.Parallel()

	got, ok := AddInt32(100, 24)
	require.True(t, ok)
	assert.Equal(t, int32(124), got)

	_, ok = AddInt32(math.MaxInt32, 1)
	assert.False(t, ok)

	got, ok = AddInt32(math.MaxInt32-5, 5)
	require.True(t, ok)
	assert.Equal(t, int32(math.MaxInt32), got)
}

func TestReadAllWithLimit(t *testing.T) {
	t.Parallel()

	data, err := ReadAllWithLimit(bytes.NewReader([]byte("abcd")), 4, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = ReadAllWithLimit(bytes.NewReader([]byte("abcde")), 4, errOverflow)
	require.ErrorIs(t, err, errOverflow)

	_, err = ReadAllWithLimit(bytes.NewReader(nil), -1, errOverflow)
	require.ErrorIs(t, err, errOverflow)
}

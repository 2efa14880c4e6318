// Package sizing provides safe size arithmetic for the int32 fields of the
// on-disk format.
package sizing

import (
	"io"
	"math"
)

// ToInt32 converts n to int32, returning overflowErr if it doesn't fit or is
// negative.
func ToInt32(n int64, overflowErr error) (int32, error) {
	if n < 0 || n > math.MaxInt32 {
		return 0, overflowErr
	}
	return int32(n), nil
}

// AddInt32 adds a non-negative size to an int32 offset, returning
// (result, false) on overflow.
func AddInt32(off, size int32) (int32, bool) {
	sum := int64(off) + int64(size)
	if sum > math.MaxInt32 || sum < 0 {
		return 0, false
	}
	return int32(sum), true
}

// ReadAllWithLimit reads up to maxSize bytes from r.
// Returns overflowErr if more than maxSize bytes are available.
func ReadAllWithLimit(r io.Reader, maxSize int64, overflowErr error) ([]byte, error) {
	if maxSize < 0 || maxSize > math.MaxInt64-1 {
		return nil, overflowErr
	}
	lr := &io.LimitedReader{R: r, N: maxSize + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, overflowErr
	}
	return data, nil
}

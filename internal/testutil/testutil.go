// Package testutil provides in-memory storage and archive fixtures for tests.
package testutil

import (
	"io"
	"sync"
	"sync/atomic"
)

// MockByteSource implements a simple in-memory byte source for tests.
// It counts reads and can block them until released.
type MockByteSource struct {
	data   []byte
	reads  atomic.Int64
	closed atomic.Bool

	mu   sync.Mutex
	gate chan struct{} // reads block while non-nil and open
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.reads.Add(1)
	if off >= int64(len(m.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// Close marks the source closed.
func (m *MockByteSource) Close() error {
	m.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (m *MockByteSource) Closed() bool {
	return m.closed.Load()
}

// Reads returns the number of ReadAt calls so far.
func (m *MockByteSource) Reads() int64 {
	return m.reads.Load()
}

// Block makes subsequent reads wait until the returned release function is
// called.
func (m *MockByteSource) Block() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.gate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

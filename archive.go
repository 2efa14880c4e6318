package drs

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// state is the lifecycle phase of an Archive handle.
type state uint8

const (
	stateUnopened state = iota
	stateOpening
	stateDirectoryLoading
	stateReady
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateOpening:
		return "opening"
	case stateDirectoryLoading:
		return "loading"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// loadKey is the singleflight key for directory loads.
const loadKey = "directory"

// Archive is a handle to an archive in storage.
//
// The directory is loaded lazily: the first query opens storage and reads
// the directory, and callers arriving while that load is in flight wait for
// it rather than starting another. A failed load leaves the handle unopened,
// so a later call may try again.
//
// Archive is safe for concurrent use. Close is terminal.
type Archive struct {
	path       string
	opener     Opener
	tagLayout  TagLayout
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu      sync.Mutex
	state   state
	src     ByteSource
	storage Storage // non-nil when the handle opened src itself
	index   *Index
	loads   singleflight.Group // zero value is valid
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Open returns a handle to the archive at path. No I/O is performed until
// the directory is needed.
func Open(path string, opts ...Option) *Archive {
	a := &Archive{path: path, opener: OpenFile}
	for _, opt := range opts {
		opt(a)
	}
	if a.opener == nil {
		a.opener = OpenFile
	}
	return a
}

// NewArchive returns a handle over an already open source. The handle does
// not take ownership of src; Close does not close it.
func NewArchive(src ByteSource, opts ...Option) *Archive {
	a := &Archive{src: src}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load loads the directory if it has not been loaded yet.
func (a *Archive) Load(ctx context.Context) error {
	_, err := a.ready(ctx)
	return err
}

// ready returns the loaded index, loading it first if needed.
func (a *Archive) ready(ctx context.Context) (*Index, error) {
	a.mu.Lock()
	switch a.state {
	case stateReady:
		idx := a.index
		a.mu.Unlock()
		return idx, nil
	case stateClosed:
		a.mu.Unlock()
		return nil, ErrClosed
	}
	a.mu.Unlock()

	// The load outlives any single caller, so it must not inherit the
	// caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := a.loads.DoChan(loadKey, func() (any, error) {
		return a.load(loadCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil //nolint:errcheck // type assertion always succeeds when err is nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load runs the Unopened -> Opening -> DirectoryLoading -> Ready sequence.
// It is only ever run by one goroutine at a time per handle.
func (a *Archive) load(ctx context.Context) (*Index, error) {
	a.mu.Lock()
	switch a.state {
	case stateReady:
		idx := a.index
		a.mu.Unlock()
		return idx, nil
	case stateClosed:
		a.mu.Unlock()
		return nil, ErrClosed
	}

	src := a.src
	if src == nil {
		a.state = stateOpening
		a.mu.Unlock()

		a.log().Debug("opening archive", "path", a.path)
		storage, err := a.opener(ctx, a.path)

		a.mu.Lock()
		if err != nil {
			a.state = stateUnopened
			a.mu.Unlock()
			return nil, fmt.Errorf("open %s: %w", a.path, err)
		}
		if a.state == stateClosed {
			a.mu.Unlock()
			storage.Close()
			return nil, ErrClosed
		}
		a.src, a.storage = storage, storage
		src = storage
	}
	a.state = stateDirectoryLoading
	a.mu.Unlock()

	idx, err := ReadIndex(src, a.tagLayout)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateClosed {
		return nil, ErrClosed
	}
	if err != nil {
		a.state = stateUnopened
		if a.storage != nil {
			a.storage.Close()
			a.src, a.storage = nil, nil
		}
		return nil, err
	}
	a.index = idx
	a.state = stateReady

	h := idx.Header()
	a.log().Debug("directory loaded",
		"path", a.path,
		"variant", h.Variant.String(),
		"tables", len(idx.Tables()),
		"files", idx.FileCount())
	return idx, nil
}

// source returns the loaded index and the byte source behind it.
func (a *Archive) source(ctx context.Context) (*Index, ByteSource, error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateClosed {
		return nil, nil, ErrClosed
	}
	return idx, a.src, nil
}

// Close releases the underlying storage. Further operations return
// ErrClosed. Closing an already closed archive returns nil.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateClosed {
		return nil
	}
	a.state = stateClosed
	a.index = nil
	storage := a.storage
	a.src, a.storage = nil, nil
	if storage == nil {
		return nil
	}
	return storage.Close()
}

// Index returns the loaded directory.
func (a *Archive) Index(ctx context.Context) (*Index, error) {
	return a.ready(ctx)
}

// Header returns the archive header.
func (a *Archive) Header(ctx context.Context) (Header, error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return Header{}, err
	}
	return idx.Header(), nil
}

// Tables returns the tables in directory order.
func (a *Archive) Tables(ctx context.Context) ([]*Table, error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Tables(), nil
}

// FileCount returns the total number of entries.
func (a *Archive) FileCount(ctx context.Context) (int, error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return 0, err
	}
	return idx.FileCount(), nil
}

// Size returns the archive size computed from the directory.
func (a *Archive) Size(ctx context.Context) (int64, error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return 0, err
	}
	return idx.Size(), nil
}

// Lookup returns the first entry with the given id. ok is false when no
// entry matches; that is not an error.
func (a *Archive) Lookup(ctx context.Context, id int32) (e *Entry, ok bool, err error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return nil, false, err
	}
	e, ok = idx.Lookup(id)
	return e, ok, nil
}

// Entries returns an iterator over all entries in table-then-entry order.
func (a *Archive) Entries(ctx context.Context) (iter.Seq[*Entry], error) {
	idx, err := a.ready(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Entries(), nil
}

package drstype

import (
	"context"
	"sync"
)

// Entry is one stored resource's directory record.
//
// An entry's bytes come from exactly one place: the archive storage at a
// known offset (disk-resident), or an in-memory payload held by a builder
// (pending). The two cases are modeled as a closed source type; readers
// resolve either uniformly.
type Entry struct {
	// ID is the resource id.
	ID int32

	// Tag is the owning table's type tag.
	Tag Tag

	// Size is the payload size in bytes. For entries fed from a stream it is
	// only valid after Wait returns.
	Size int32

	src source

	// done is closed when a streamed payload has been drained.
	done    chan struct{}
	doneErr error
	once    sync.Once
}

// source is the closed set of places an entry's bytes can come from.
type source interface {
	isSource()
}

// onDisk locates an entry in archive storage.
type onDisk struct {
	offset int32
}

// pending holds a builder payload. offset is assigned at layout time.
type pending struct {
	data     []byte
	offset   int32
	resolved bool
}

func (*onDisk) isSource()  {}
func (*pending) isSource() {}

// NewDiskEntry returns an entry located at offset in archive storage.
func NewDiskEntry(id int32, tag Tag, offset, size int32) *Entry {
	return &Entry{ID: id, Tag: tag, Size: size, src: &onDisk{offset: offset}}
}

// NewPendingEntry returns a write-pending entry holding data in memory.
// The offset is unresolved until the entry is laid out.
func NewPendingEntry(id int32, tag Tag, data []byte) *Entry {
	return &Entry{ID: id, Tag: tag, Size: int32(len(data)), src: &pending{data: data}} //nolint:gosec // callers bound len(data)
}

// NewStreamingEntry returns a write-pending entry whose payload is not yet
// available, and a function that completes it. Complete must be called
// exactly once; later calls are ignored.
func NewStreamingEntry(id int32, tag Tag) (e *Entry, complete func(data []byte, err error)) {
	e = &Entry{ID: id, Tag: tag, src: &pending{}, done: make(chan struct{})}
	return e, func(data []byte, err error) {
		e.once.Do(func() {
			if err == nil {
				e.src.(*pending).data = data
				e.Size = int32(len(data)) //nolint:gosec // callers bound len(data)
			}
			e.doneErr = err
			close(e.done)
		})
	}
}

// Wait blocks until the entry's payload is complete. It returns
// immediately for entries that were complete when created.
func (e *Entry) Wait(ctx context.Context) error {
	if e.done == nil {
		return nil
	}
	select {
	case <-e.done:
		return e.doneErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether the entry's bytes are held in memory.
func (e *Entry) Pending() bool {
	_, ok := e.src.(*pending)
	return ok
}

// Offset returns the entry's byte offset within the archive. ok is false
// for pending entries that have not been laid out yet.
func (e *Entry) Offset() (offset int32, ok bool) {
	switch s := e.src.(type) {
	case *onDisk:
		return s.offset, true
	case *pending:
		return s.offset, s.resolved
	default:
		return 0, false
	}
}

// Payload returns the in-memory payload of a pending entry.
// The returned slice must not be modified.
func (e *Entry) Payload() ([]byte, bool) {
	p, ok := e.src.(*pending)
	if !ok {
		return nil, false
	}
	return p.data, true
}

// ResolveOffset records the layout offset of a pending entry. It has no
// effect on disk-resident entries, whose offset is fixed.
func (e *Entry) ResolveOffset(offset int32) {
	if p, ok := e.src.(*pending); ok {
		p.offset = offset
		p.resolved = true
	}
}

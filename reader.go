package drs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goto-bus-stop/genie-drs/internal/format"
)

// OpenEntry returns a reader bounded to e's bytes.
//
// Disk-resident entries are read from storage on demand with positioned
// reads; pending entries are read from their in-memory payload. The reader
// never buffers the whole archive.
func (a *Archive) OpenEntry(ctx context.Context, e *Entry) (*io.SectionReader, error) {
	_, src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	return openEntry(ctx, src, e)
}

// ReadEntry returns exactly e.Size bytes of e's payload.
func (a *Archive) ReadEntry(ctx context.Context, e *Entry) ([]byte, error) {
	_, src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	return readEntry(ctx, src, e)
}

// ReadFile returns the payload of the first entry with the given id.
// It returns ErrNotFound if no entry matches.
func (a *Archive) ReadFile(ctx context.Context, id int32) ([]byte, error) {
	idx, src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := idx.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("read %d: %w", id, ErrNotFound)
	}
	return readEntry(ctx, src, e)
}

// Decode reads the entry with the given id and hands its bytes to the
// archive's dispatcher. It returns ErrNotFound if no entry matches.
func (a *Archive) Decode(ctx context.Context, id int32) (Decoded, error) {
	idx, src, err := a.source(ctx)
	if err != nil {
		return Decoded{}, err
	}
	e, ok := idx.Lookup(id)
	if !ok {
		return Decoded{}, fmt.Errorf("decode %d: %w", id, ErrNotFound)
	}
	data, err := readEntry(ctx, src, e)
	if err != nil {
		return Decoded{}, err
	}
	d := a.dispatcher
	if d == nil {
		d = defaultDispatcher
	}
	return d.Dispatch(data, MetaOf(e))
}

// openEntry resolves e's data source. src may be nil when e is pending.
func openEntry(ctx context.Context, src ByteSource, e *Entry) (*io.SectionReader, error) {
	if e.Pending() {
		if err := e.Wait(ctx); err != nil {
			return nil, err
		}
		data, _ := e.Payload()
		return io.NewSectionReader(bytes.NewReader(data), 0, int64(len(data))), nil
	}
	if src == nil {
		return nil, fmt.Errorf("read entry %d: no storage for disk-resident entry", e.ID)
	}
	off, _ := e.Offset()
	return io.NewSectionReader(src, int64(off), int64(e.Size)), nil
}

// readEntry returns a copy of e's payload.
func readEntry(ctx context.Context, src ByteSource, e *Entry) ([]byte, error) {
	if e.Pending() {
		if err := e.Wait(ctx); err != nil {
			return nil, err
		}
		data, _ := e.Payload()
		return bytes.Clone(data), nil
	}
	if src == nil {
		return nil, fmt.Errorf("read entry %d: no storage for disk-resident entry", e.ID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	off, _ := e.Offset()
	buf := make([]byte, e.Size)
	if err := format.ReadFullAt(src, buf, int64(off)); err != nil {
		return nil, fmt.Errorf("read entry %d: %w", e.ID, err)
	}
	return buf, nil
}

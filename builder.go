package drs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
	"github.com/goto-bus-stop/genie-drs/internal/format"
	"github.com/goto-bus-stop/genie-drs/internal/sizing"
)

// Builder assembles a new archive image.
//
// Building has two phases. During registration, AddEntry appends entries to
// per-tag tables with unresolved offsets. Layout, Serialize, and Bytes then
// resolve every offset in one pass and emit the image. Offsets cannot be
// assigned earlier because the directory size depends on the final table
// and entry counts.
//
// A Builder is not safe for concurrent use: AddEntry must not run
// concurrently with Layout, Serialize, or Bytes.
type Builder struct {
	header    Header
	tagLayout TagLayout
	tables    []*Table
	byTag     map[Tag]*Table
	drains    errgroup.Group
	logger    *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (b *Builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// NewBuilder returns an empty Builder. By default it writes a base-variant
// header with DefaultCopyright, DefaultVersion, and DefaultArchiveType.
func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{
		header: Header{
			Copyright:   DefaultCopyright,
			Version:     DefaultVersion,
			ArchiveType: DefaultArchiveType,
			Variant:     VariantBase,
		},
		byTag: make(map[Tag]*Table),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBuilderFrom returns a Builder seeded with the header settings and every
// entry of a. Entries are streamed from a's storage, so a must stay open
// until the new image has been serialized. The source archive is never
// modified.
func NewBuilderFrom(ctx context.Context, a *Archive, opts ...BuildOption) (*Builder, error) {
	idx, err := a.Index(ctx)
	if err != nil {
		return nil, err
	}
	h := idx.Header()
	seed := []BuildOption{
		BuildWithVariant(h.Variant),
		BuildWithCopyright(h.Copyright),
		BuildWithVersion(h.Version),
		BuildWithArchiveType(h.ArchiveType),
		BuildWithTagLayout(a.tagLayout),
	}
	b := NewBuilder(append(seed, opts...)...)
	for _, t := range idx.Tables() {
		for _, e := range t.Entries {
			r, err := a.OpenEntry(ctx, e)
			if err != nil {
				return nil, err
			}
			if _, err := b.AddReader(t.Tag, e.ID, r); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// AddEntry registers a new entry under tag. payload must be a []byte, a
// string, or an io.Reader; anything else fails with ErrInvalidPayload
// before any I/O.
//
// Readers are drained in the background. The returned entry's Size is only
// valid after its Wait method returns; Layout, Serialize, and Bytes wait
// for every pending drain.
func (b *Builder) AddEntry(tag Tag, id int32, payload any) (*Entry, error) {
	switch p := payload.(type) {
	case []byte:
		return b.AddBytes(tag, id, p)
	case string:
		return b.AddBytes(tag, id, []byte(p))
	case io.Reader:
		return b.AddReader(tag, id, p)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPayload, payload)
	}
}

// AddBytes registers an entry whose payload is data. The slice is retained;
// callers must not modify it afterwards.
func (b *Builder) AddBytes(tag Tag, id int32, data []byte) (*Entry, error) {
	if err := b.checkTag(tag); err != nil {
		return nil, err
	}
	if _, err := sizing.ToInt32(int64(len(data)), ErrSizeOverflow); err != nil {
		return nil, fmt.Errorf("add entry %d: %w", id, err)
	}
	e := drstype.NewPendingEntry(id, tag, data)
	b.append(e)
	return e, nil
}

// AddReader registers an entry whose payload is read from r until EOF.
func (b *Builder) AddReader(tag Tag, id int32, r io.Reader) (*Entry, error) {
	if isNilReader(r) {
		return nil, fmt.Errorf("%w: nil reader %T", ErrInvalidPayload, r)
	}
	if err := b.checkTag(tag); err != nil {
		return nil, err
	}
	e, complete := drstype.NewStreamingEntry(id, tag)
	b.append(e)
	b.drains.Go(func() (err error) {
		var data []byte
		defer func() {
			if p := recover(); p != nil {
				data, err = nil, fmt.Errorf("%w: reading %T panicked: %v", ErrInvalidPayload, r, p)
			}
			if err != nil {
				err = fmt.Errorf("drain entry %d (%s): %w", id, tag, err)
			}
			complete(data, err)
		}()
		data, err = sizing.ReadAllWithLimit(r, math.MaxInt32, ErrSizeOverflow)
		return err
	})
	return e, nil
}

// isNilReader reports whether r is nil or a nil pointer, map, slice, func,
// chan, or interface wrapped in a non-nil io.Reader.
func isNilReader(r io.Reader) bool {
	if r == nil {
		return true
	}
	switch v := reflect.ValueOf(r); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// checkTag rejects tags the builder's tag layout cannot store.
func (b *Builder) checkTag(tag Tag) error {
	if !b.tagLayout.Holds(tag) {
		return fmt.Errorf("%w: %q cannot be stored in the %s layout", ErrInvalidTag, tag.String(), b.tagLayout)
	}
	return nil
}

// append adds e to the table for its tag, creating the table if needed.
func (b *Builder) append(e *Entry) {
	t, ok := b.byTag[e.Tag]
	if !ok {
		t = &Table{Tag: e.Tag}
		b.tables = append(b.tables, t)
		b.byTag[e.Tag] = t
	}
	t.Entries = append(t.Entries, e)
}

// Tables returns the registered tables in creation order.
func (b *Builder) Tables() []*Table {
	return b.tables
}

// FileCount returns the number of registered entries.
func (b *Builder) FileCount() int {
	n := 0
	for _, t := range b.tables {
		n += len(t.Entries)
	}
	return n
}

// wait blocks until every streamed payload has been drained.
func (b *Builder) wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- b.drains.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Layout waits for pending payloads, then assigns table and entry offsets
// and returns the resulting directory.
func (b *Builder) Layout(ctx context.Context) (*Index, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	h, _, err := format.Layout(b.header, b.tables)
	if err != nil {
		return nil, err
	}
	return NewIndex(h, b.tables), nil
}

// Serialize lays out the archive and writes it to w: the header, the table
// directory, the file directory, then every payload in table-then-entry
// order. It returns the number of bytes written.
func (b *Builder) Serialize(ctx context.Context, w io.Writer) (int64, error) {
	idx, err := b.Layout(ctx)
	if err != nil {
		return 0, err
	}
	h := idx.Header()
	b.log().Info("serializing archive",
		"variant", h.Variant.String(),
		"tables", h.TableCount,
		"files", idx.FileCount(),
		"size", idx.Size())

	dir, err := format.AppendDirectory(make([]byte, 0, h.FirstFileOffset), h, b.tables, b.tagLayout)
	if err != nil {
		return 0, err
	}
	written := int64(0)
	n, err := w.Write(dir)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write directory: %w", err)
	}

	for e := range idx.Entries() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		data, _ := e.Payload()
		n, err := w.Write(data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write entry %d: %w", e.ID, err)
		}
	}

	b.log().Debug("archive serialized", "bytes", written)
	return written, nil
}

// Bytes returns the serialized archive.
func (b *Builder) Bytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.Serialize(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadEntry returns the payload of a registered entry.
func (b *Builder) ReadEntry(ctx context.Context, e *Entry) ([]byte, error) {
	return readEntry(ctx, nil, e)
}

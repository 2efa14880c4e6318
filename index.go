package drs

import (
	"fmt"
	"iter"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
	"github.com/goto-bus-stop/genie-drs/internal/format"
)

// Index is a parsed archive directory: the header and its tables, in
// on-disk order.
//
// An Index is not modified after it is built; it is safe for concurrent use.
type Index struct {
	header Header
	tables []*Table
	files  int
}

// NewIndex returns an Index over h and tables. The tables are retained;
// callers must not modify them afterwards.
func NewIndex(h Header, tables []*Table) *Index {
	files := 0
	for _, t := range tables {
		files += len(t.Entries)
	}
	return &Index{header: h, tables: tables, files: files}
}

// ReadIndex loads the directory of the archive in src.
//
// The directory is read in three sequential steps: the header, then the
// table directory sized by the header's table count, then the file
// directory sized by the sum of the tables' file counts. Declared sizes
// that exceed the source are reported as ErrFormat.
func ReadIndex(src ByteSource, layout TagLayout) (*Index, error) {
	size := src.Size()

	h, err := format.ReadHeader(src, size)
	if err != nil {
		return nil, err
	}

	off := int64(h.Variant.HeaderSize())
	tableBytes := int64(h.TableCount) * drstype.TableRecordSize
	if off+tableBytes > size {
		return nil, fmt.Errorf("%w: %d tables need %d bytes past offset %d, archive has %d", ErrFormat, h.TableCount, tableBytes, off, size)
	}
	tableBuf := make([]byte, tableBytes)
	if err := format.ReadFullAt(src, tableBuf, off); err != nil {
		return nil, fmt.Errorf("read table directory: %w", err)
	}
	records, err := format.ParseTables(tableBuf, h.TableCount, layout)
	if err != nil {
		return nil, err
	}

	off += tableBytes
	fileBytes := format.FileCount(records) * drstype.FileRecordSize
	if off+fileBytes > size {
		return nil, fmt.Errorf("%w: %d files need %d bytes past offset %d, archive has %d", ErrFormat, format.FileCount(records), fileBytes, off, size)
	}
	fileBuf := make([]byte, fileBytes)
	if err := format.ReadFullAt(src, fileBuf, off); err != nil {
		return nil, fmt.Errorf("read file directory: %w", err)
	}
	tables, err := format.ParseFiles(fileBuf, records)
	if err != nil {
		return nil, err
	}

	dirEnd := off + fileBytes
	if int64(h.FirstFileOffset) < dirEnd {
		return nil, fmt.Errorf("%w: first file offset %d inside directory ending at %d", ErrFormat, h.FirstFileOffset, dirEnd)
	}
	if int64(h.FirstFileOffset) > size {
		return nil, fmt.Errorf("%w: first file offset %d past end of %d-byte archive", ErrFormat, h.FirstFileOffset, size)
	}
	for _, t := range tables {
		for _, e := range t.Entries {
			entryOff, _ := e.Offset()
			if int64(entryOff)+int64(e.Size) > size {
				return nil, fmt.Errorf("%w: entry %d in table %s spans [%d, %d), archive has %d bytes", ErrFormat, e.ID, t.Tag, entryOff, int64(entryOff)+int64(e.Size), size)
			}
		}
	}

	return NewIndex(h, tables), nil
}

// Header returns the archive header.
func (idx *Index) Header() Header {
	return idx.header
}

// Tables returns the tables in directory order.
// The returned slice must be treated as read-only.
func (idx *Index) Tables() []*Table {
	return idx.tables
}

// FileCount returns the total number of entries across all tables.
func (idx *Index) FileCount() int {
	return idx.files
}

// Lookup returns the first entry with the given id, scanning tables in
// directory order and entries in table order.
func (idx *Index) Lookup(id int32) (*Entry, bool) {
	for _, t := range idx.tables {
		for _, e := range t.Entries {
			if e.ID == id {
				return e, true
			}
		}
	}
	return nil, false
}

// Entries returns an iterator over all entries in table-then-entry order.
// The iterator may be ranged over any number of times.
func (idx *Index) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, t := range idx.tables {
			for _, e := range t.Entries {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// DirectorySize returns the combined size of the header, table directory,
// and file directory.
func (idx *Index) DirectorySize() int64 {
	return drstype.DirectorySize(idx.header.Variant, len(idx.tables), idx.files)
}

// Size returns the size of the archive described by the index: the
// directory plus every entry's payload.
func (idx *Index) Size() int64 {
	size := idx.DirectorySize()
	for e := range idx.Entries() {
		size += int64(e.Size)
	}
	return size
}

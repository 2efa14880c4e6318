package format

import (
	"fmt"
	"math"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
	"github.com/goto-bus-stop/genie-drs/internal/sizing"
)

// Layout assigns offsets for a new archive image built from tables.
//
// The directory size depends on the final table and entry counts, so Layout
// must run after every entry is registered. Payloads start right after the
// file directory and follow table order, then entry order, with no padding.
// Every entry must be pending. Layout returns h with TableCount and
// FirstFileOffset filled in, and the total image size.
func Layout(h drstype.Header, tables []*drstype.Table) (drstype.Header, int64, error) {
	if err := CheckHeader(h); err != nil {
		return h, 0, err
	}
	files := 0
	for _, t := range tables {
		files += len(t.Entries)
	}
	dirSize := drstype.DirectorySize(h.Variant, len(tables), files)
	if dirSize > math.MaxInt32 {
		return h, 0, fmt.Errorf("%w: directory of %d bytes", drstype.ErrSizeOverflow, dirSize)
	}

	h.TableCount = int32(len(tables)) //nolint:gosec // bounded by dirSize check
	h.FirstFileOffset = int32(dirSize)

	record := int32(h.Variant.HeaderSize()) + drstype.TableRecordSize*h.TableCount //nolint:gosec // bounded by dirSize check
	running := h.FirstFileOffset
	for _, t := range tables {
		t.Offset = record
		record += drstype.FileRecordSize * int32(len(t.Entries)) //nolint:gosec // bounded by dirSize check
		for _, e := range t.Entries {
			if !e.Pending() {
				return h, 0, fmt.Errorf("layout: entry %d in table %s is not pending", e.ID, t.Tag)
			}
			e.ResolveOffset(running)
			next, ok := sizing.AddInt32(running, e.Size)
			if !ok {
				return h, 0, fmt.Errorf("%w: entry %d in table %s ends past %d", drstype.ErrSizeOverflow, e.ID, t.Tag, math.MaxInt32)
			}
			running = next
		}
	}
	return h, int64(running), nil
}

// CheckHeader reports whether h can be written and detected again as the
// same variant. Readers tell the variants apart by the copyright text alone,
// so an extended header must carry ExtendedCopyright.
func CheckHeader(h drstype.Header) error {
	if h.Variant == drstype.VariantExtended && h.Copyright != drstype.ExtendedCopyright {
		return fmt.Errorf("%w: extended header needs copyright %q, have %q", drstype.ErrFormat, drstype.ExtendedCopyright, h.Copyright)
	}
	return nil
}

// AppendDirectory appends the header, table directory, and file directory to
// dst in that order.
func AppendDirectory(dst []byte, h drstype.Header, tables []*drstype.Table, layout drstype.TagLayout) ([]byte, error) {
	dst = AppendHeader(dst, h)
	dst = AppendTables(dst, tables, layout)
	return AppendFiles(dst, tables)
}

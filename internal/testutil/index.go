package testutil

import (
	"encoding/binary"
	"testing"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
)

// TestEntry holds data for building test archives.
type TestEntry struct {
	Tag  string
	ID   int32
	Data []byte
}

// BuildTestArchive assembles an archive image byte by byte, independent of
// the package's builder. Tables appear in order of first use of each tag.
func BuildTestArchive(tb testing.TB, variant drstype.Variant, entries []TestEntry) []byte {
	tb.Helper()

	type table struct {
		tag     string
		entries []TestEntry
	}
	var tables []*table
	byTag := make(map[string]*table)
	for _, e := range entries {
		if len(e.Tag) != 4 {
			tb.Fatalf("tag %q is not 4 bytes", e.Tag)
		}
		t, ok := byTag[e.Tag]
		if !ok {
			t = &table{tag: e.Tag}
			tables = append(tables, t)
			byTag[e.Tag] = t
		}
		t.entries = append(t.entries, e)
	}

	headerSize := variant.HeaderSize()
	dirSize := headerSize + 12*len(tables) + 12*len(entries)

	buf := make([]byte, headerSize, dirSize)
	if variant == drstype.VariantExtended {
		copy(buf, drstype.ExtendedCopyright)
	} else {
		copy(buf, drstype.DefaultCopyright)
	}
	cs := variant.CopyrightSize()
	copy(buf[cs:], drstype.DefaultVersion)
	copy(buf[cs+4:], drstype.DefaultArchiveType)
	binary.LittleEndian.PutUint32(buf[cs+16:], uint32(len(tables))) //nolint:gosec // test sizes are small
	binary.LittleEndian.PutUint32(buf[cs+20:], uint32(dirSize))     //nolint:gosec // test sizes are small

	record := headerSize + 12*len(tables)
	for _, t := range tables {
		tag := []byte(t.tag)
		buf = append(buf, tag[3], tag[2], tag[1], tag[0])
		buf = binary.LittleEndian.AppendUint32(buf, uint32(record))         //nolint:gosec // test sizes are small
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.entries))) //nolint:gosec // test sizes are small
		record += 12 * len(t.entries)
	}

	offset := dirSize
	for _, t := range tables {
		for _, e := range t.entries {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(e.ID))        //nolint:gosec // test ids round-trip
			buf = binary.LittleEndian.AppendUint32(buf, uint32(offset))      //nolint:gosec // test sizes are small
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Data))) //nolint:gosec // test sizes are small
			offset += len(e.Data)
		}
	}
	for _, t := range tables {
		for _, e := range t.entries {
			buf = append(buf, e.Data...)
		}
	}
	return buf
}

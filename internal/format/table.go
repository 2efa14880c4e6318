package format

import (
	"encoding/binary"
	"fmt"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
)

// TableRecord is one decoded table descriptor.
type TableRecord struct {
	Tag       drstype.Tag
	Offset    int32
	FileCount int32
}

// ParseTables decodes count table descriptors from b.
func ParseTables(b []byte, count int32, layout drstype.TagLayout) ([]TableRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative table count %d", drstype.ErrFormat, count)
	}
	need := int64(count) * drstype.TableRecordSize
	if int64(len(b)) < need {
		return nil, fmt.Errorf("%w: table directory needs %d bytes, have %d", drstype.ErrFormat, need, len(b))
	}

	records := make([]TableRecord, count)
	for i := range records {
		rec := b[i*drstype.TableRecordSize:]
		var tag [4]byte
		copy(tag[:], rec[:4])
		records[i] = TableRecord{
			Tag:       drstype.DecodeTag(tag, layout),
			Offset:    int32(binary.LittleEndian.Uint32(rec[4:])), //nolint:gosec // two's complement reinterpretation
			FileCount: int32(binary.LittleEndian.Uint32(rec[8:])), //nolint:gosec // two's complement reinterpretation
		}
		if records[i].FileCount < 0 {
			return nil, fmt.Errorf("%w: table %d (%s) has negative file count %d", drstype.ErrFormat, i, records[i].Tag, records[i].FileCount)
		}
	}
	return records, nil
}

// AppendTables appends one descriptor per table to dst, preserving order.
// The file count written is the table's current entry count.
func AppendTables(dst []byte, tables []*drstype.Table, layout drstype.TagLayout) []byte {
	for _, t := range tables {
		tag := drstype.EncodeTag(t.Tag, layout)
		dst = append(dst, tag[:]...)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(t.Offset))       //nolint:gosec // two's complement reinterpretation
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(t.Entries))) //nolint:gosec // counts are bounded by layout
	}
	return dst
}

// FileCount returns the total number of file records described by records.
func FileCount(records []TableRecord) int64 {
	var n int64
	for _, r := range records {
		n += int64(r.FileCount)
	}
	return n
}

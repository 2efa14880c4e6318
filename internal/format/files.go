package format

import (
	"encoding/binary"
	"fmt"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
)

// ParseFiles decodes the file directory described by records, returning one
// table per record with its entries populated. Every entry is disk-resident
// and carries its table's tag.
func ParseFiles(b []byte, records []TableRecord) ([]*drstype.Table, error) {
	need := FileCount(records) * drstype.FileRecordSize
	if int64(len(b)) < need {
		return nil, fmt.Errorf("%w: file directory needs %d bytes, have %d", drstype.ErrFormat, need, len(b))
	}

	tables := make([]*drstype.Table, len(records))
	pos := 0
	for i, rec := range records {
		t := &drstype.Table{
			Tag:     rec.Tag,
			Offset:  rec.Offset,
			Entries: make([]*drstype.Entry, 0, rec.FileCount),
		}
		for range rec.FileCount {
			id := int32(binary.LittleEndian.Uint32(b[pos:]))       //nolint:gosec // two's complement reinterpretation
			offset := int32(binary.LittleEndian.Uint32(b[pos+4:])) //nolint:gosec // two's complement reinterpretation
			size := int32(binary.LittleEndian.Uint32(b[pos+8:]))   //nolint:gosec // two's complement reinterpretation
			pos += drstype.FileRecordSize
			if offset < 0 || size < 0 {
				return nil, fmt.Errorf("%w: entry %d in table %s has offset %d size %d", drstype.ErrFormat, id, rec.Tag, offset, size)
			}
			t.Entries = append(t.Entries, drstype.NewDiskEntry(id, rec.Tag, offset, size))
		}
		tables[i] = t
	}
	return tables, nil
}

// AppendFiles appends the file records of tables to dst in table order, then
// entry order. Every entry must have a resolved offset.
func AppendFiles(dst []byte, tables []*drstype.Table) ([]byte, error) {
	for _, t := range tables {
		for _, e := range t.Entries {
			offset, ok := e.Offset()
			if !ok {
				return nil, fmt.Errorf("%w: entry %d in table %s", drstype.ErrUnresolvedOffset, e.ID, t.Tag)
			}
			dst = binary.LittleEndian.AppendUint32(dst, uint32(e.ID))   //nolint:gosec // two's complement reinterpretation
			dst = binary.LittleEndian.AppendUint32(dst, uint32(offset)) //nolint:gosec // two's complement reinterpretation
			dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Size)) //nolint:gosec // two's complement reinterpretation
		}
	}
	return dst, nil
}

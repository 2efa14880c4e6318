package drstype

// Table groups every entry sharing one type tag.
type Table struct {
	// Tag is the type tag shared by all entries.
	Tag Tag

	// Offset is the byte offset of the table's first file record.
	// Zero until the table has been parsed or laid out.
	Offset int32

	// Entries are the table's entries in directory order.
	Entries []*Entry
}

// FileCount returns the number of entries in the table.
func (t *Table) FileCount() int {
	return len(t.Entries)
}

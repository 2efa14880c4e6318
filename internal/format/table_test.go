package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
)

func TestTableDirectoryRoundTrip(t *testing.T) {
	t.Parallel()

	tables := []*drstype.Table{
		{Tag: drstype.TagBinary, Offset: 100, Entries: make([]*drstype.Entry, 2)},
		{Tag: drstype.TagSprite, Offset: 124, Entries: make([]*drstype.Entry, 0)},
		{Tag: drstype.TagAudio, Offset: 124, Entries: make([]*drstype.Entry, 5)},
	}

	b := AppendTables(nil, tables, drstype.TagPacked)
	require.Len(t, b, 3*drstype.TableRecordSize)

	// Tags are stored byte-reversed: "bina" is written as "anib".
	assert.Equal(t, []byte("anib"), b[:4])
	assert.Equal(t, []byte(" pls"), b[12:16])

	records, err := ParseTables(b, 3, drstype.TagPacked)
	require.NoError(t, err)
	assert.Equal(t, []TableRecord{
		{Tag: drstype.TagBinary, Offset: 100, FileCount: 2},
		{Tag: drstype.TagSprite, Offset: 124, FileCount: 0},
		{Tag: drstype.TagAudio, Offset: 124, FileCount: 5},
	}, records)
	assert.Equal(t, int64(7), FileCount(records))
}

func TestParseTables_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseTables(make([]byte, 23), 2, drstype.TagPacked)
	require.ErrorIs(t, err, drstype.ErrFormat)

	_, err = ParseTables(nil, -1, drstype.TagPacked)
	require.ErrorIs(t, err, drstype.ErrFormat)

	b := []byte{'a', 'n', 'i', 'b', 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}
	_, err = ParseTables(b, 1, drstype.TagPacked)
	require.ErrorIs(t, err, drstype.ErrFormat)
}

func TestParseTables_Legacy(t *testing.T) {
	t.Parallel()

	// One reserved byte followed by "slp" reversed.
	b := []byte{0, 'p', 'l', 's', 64, 0, 0, 0, 1, 0, 0, 0}
	records, err := ParseTables(b, 1, drstype.TagLegacy)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "slp ", records[0].Tag.String())

	tables := []*drstype.Table{{Tag: records[0].Tag, Offset: 64, Entries: make([]*drstype.Entry, 1)}}
	out := AppendTables(nil, tables, drstype.TagLegacy)
	again, err := ParseTables(out, 1, drstype.TagLegacy)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

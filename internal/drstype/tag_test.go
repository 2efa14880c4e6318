package drstype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Tag
		wantErr bool
	}{
		{"slp ", TagSprite, false},
		{"wav ", TagAudio, false},
		{"bina", TagBinary, false},
		{"abc1", Tag(0x61626331), false},
		{"abc", 0, true},
		{"abcde", 0, true},
		{"ab\xffc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTag(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestTagEncoding(t *testing.T) {
	t.Parallel()

	b := EncodeTag(TagBinary, TagPacked)
	assert.Equal(t, [4]byte{'a', 'n', 'i', 'b'}, b)
	assert.Equal(t, TagBinary, DecodeTag(b, TagPacked))

	legacy := DecodeTag(b, TagLegacy)
	assert.Equal(t, "bin ", legacy.String())
	assert.Equal(t, legacy, DecodeTag(EncodeTag(legacy, TagLegacy), TagLegacy))
}

func TestMustTagPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustTag("x") })
}

func TestTagLayout_Holds(t *testing.T) {
	t.Parallel()

	assert.True(t, TagPacked.Holds(TagBinary))
	assert.True(t, TagLegacy.Holds(TagSprite))
	assert.True(t, TagLegacy.Holds(TagAudio))
	assert.False(t, TagLegacy.Holds(TagBinary))
	assert.False(t, TagLegacy.Holds(MustTag("abc1")))
}

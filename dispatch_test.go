package drs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  Tag
		head string
		want Kind
	}{
		{"sprite by tag", TagSprite, "", KindSprite},
		{"sprite ignores content", TagSprite, PaletteMagic, KindSprite},
		{"audio by tag", TagAudio, "RIFF", KindAudio},
		{"palette sniffed", TagBinary, "JASC-PAL\r\n", KindPalette},
		{"palette under any tag", MustTag("abc1"), PaletteMagic, KindPalette},
		{"binary", TagBinary, "\x00\x01", KindGeneric},
		{"short head", TagBinary, "JASC", KindGeneric},
		{"empty", TagBinary, "", KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.tag, []byte(tt.head)))
		})
	}
}

func TestDispatcher_Fallback(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	data := []byte("plain")
	got, err := d.Dispatch(data, Meta{ID: 1, Tag: TagBinary, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, got.Kind)
	assert.Equal(t, data, got.Value)
}

func TestDispatcher_Register(t *testing.T) {
	t.Parallel()

	d := NewDispatcher().Register(KindAudio, DecoderFunc(func(data []byte, meta Meta) (any, error) {
		return len(data), nil
	}))

	got, err := d.Dispatch([]byte("RIFF....WAVE"), Meta{ID: 5000, Tag: TagAudio})
	require.NoError(t, err)
	assert.Equal(t, Decoded{Kind: KindAudio, Value: 12}, got)

	// replacing a decoder wins
	d.Register(KindAudio, DecoderFunc(func([]byte, Meta) (any, error) { return "wav", nil }))
	got, err = d.Dispatch(nil, Meta{Tag: TagAudio})
	require.NoError(t, err)
	assert.Equal(t, "wav", got.Value)

	// out of range kinds are ignored
	assert.NotPanics(t, func() { d.Register(Kind(200), nil) })
}

func TestDispatcher_DecoderError(t *testing.T) {
	t.Parallel()

	bad := errors.New("bad sprite")
	d := NewDispatcher().Register(KindSprite, DecoderFunc(func([]byte, Meta) (any, error) {
		return nil, bad
	}))
	_, err := d.Dispatch([]byte("x"), Meta{ID: 3, Tag: TagSprite})
	require.ErrorIs(t, err, bad)
	assert.Contains(t, err.Error(), "sprite entry 3")
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "generic", KindGeneric.String())
	assert.Equal(t, "palette", KindPalette.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

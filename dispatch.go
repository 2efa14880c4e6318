package drs

import (
	"bytes"
	"fmt"
)

// Kind is the payload classification used to pick a decoder.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindSprite
	KindAudio
	KindPalette

	kindCount
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindSprite:
		return "sprite"
	case KindAudio:
		return "audio"
	case KindPalette:
		return "palette"
	default:
		return "unknown"
	}
}

// PaletteMagic prefixes palette text payloads.
const PaletteMagic = "JASC-PAL"

// SniffLen is the number of leading payload bytes Classify inspects.
const SniffLen = len(PaletteMagic)

// Classify returns the kind of a payload. Sprites and audio are identified
// by tag alone. Any other tag is generic binary unless the payload starts
// with PaletteMagic.
func Classify(tag Tag, head []byte) Kind {
	switch tag {
	case TagSprite:
		return KindSprite
	case TagAudio:
		return KindAudio
	}
	if bytes.HasPrefix(head, []byte(PaletteMagic)) {
		return KindPalette
	}
	return KindGeneric
}

// Meta describes the entry a payload came from.
type Meta struct {
	ID     int32
	Offset int32
	Size   int32
	Tag    Tag
}

// MetaOf returns the metadata of e. Offset is zero for unresolved entries.
func MetaOf(e *Entry) Meta {
	off, _ := e.Offset()
	return Meta{ID: e.ID, Offset: off, Size: e.Size, Tag: e.Tag}
}

// Decoder turns raw payload bytes into a decoded value.
type Decoder interface {
	Decode(data []byte, meta Meta) (any, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, meta Meta) (any, error)

// Decode calls f(data, meta).
func (f DecoderFunc) Decode(data []byte, meta Meta) (any, error) {
	return f(data, meta)
}

// Decoded is the result of dispatching a payload.
type Decoded struct {
	// Kind is the payload classification.
	Kind Kind

	// Value is the decoder's result, or the raw bytes when no decoder is
	// registered for Kind.
	Value any
}

// Dispatcher routes payloads to decoders by Kind.
//
// Register decoders before sharing a Dispatcher; Dispatch is then safe for
// concurrent use.
type Dispatcher struct {
	decoders [kindCount]Decoder
}

// defaultDispatcher has no decoders and returns raw bytes.
var defaultDispatcher = NewDispatcher()

// NewDispatcher returns a Dispatcher with no decoders registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register sets the decoder for k, replacing any previous one.
func (d *Dispatcher) Register(k Kind, dec Decoder) *Dispatcher {
	if k < kindCount {
		d.decoders[k] = dec
	}
	return d
}

// Dispatch classifies data and runs the matching decoder.
func (d *Dispatcher) Dispatch(data []byte, meta Meta) (Decoded, error) {
	head := data
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	kind := Classify(meta.Tag, head)

	dec := d.decoders[kind]
	if dec == nil {
		return Decoded{Kind: kind, Value: data}, nil
	}
	v, err := dec.Decode(data, meta)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode %s entry %d: %w", kind, meta.ID, err)
	}
	return Decoded{Kind: kind, Value: v}, nil
}

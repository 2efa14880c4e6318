package drstype

import (
	"encoding/binary"
	"fmt"
)

// Tag is a four-character type code packed into a uint32 with the first
// character in the most significant byte.
type Tag uint32

// Well-known type tags.
const (
	TagSprite Tag = 's'<<24 | 'l'<<16 | 'p'<<8 | ' '
	TagAudio  Tag = 'w'<<24 | 'a'<<16 | 'v'<<8 | ' '
	TagBinary Tag = 'b'<<24 | 'i'<<16 | 'n'<<8 | 'a'
)

// ParseTag packs a four-character ASCII string into a Tag.
func ParseTag(s string) (Tag, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q is not 4 bytes", ErrInvalidTag, s)
	}
	for i := range len(s) {
		if s[i] > 0x7f {
			return 0, fmt.Errorf("%w: %q is not ASCII", ErrInvalidTag, s)
		}
	}
	return Tag(binary.BigEndian.Uint32([]byte(s))), nil
}

// MustTag is like ParseTag but panics on error. It is intended for
// package-level constants and tests.
func MustTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the four characters of the tag.
func (t Tag) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	return string(b[:])
}

// TagLayout selects how a tag is stored in a table descriptor.
type TagLayout uint8

const (
	// TagPacked stores all four characters as a little-endian uint32.
	TagPacked TagLayout = iota

	// TagLegacy stores one reserved byte followed by three characters in
	// reverse order. The reserved byte is not part of the tag; decoded tags
	// have a space in their last position.
	TagLegacy
)

// String returns the layout name.
func (l TagLayout) String() string {
	switch l {
	case TagPacked:
		return "packed"
	case TagLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Holds reports whether t survives an encode and decode round trip in
// layout l. The legacy layout drops the last character, so only tags
// ending in a space fit.
func (l TagLayout) Holds(t Tag) bool {
	if l == TagLegacy {
		return byte(t) == legacyReserved
	}
	return true
}

// legacyReserved is written into the reserved byte of legacy descriptors.
const legacyReserved = ' '

// EncodeTag returns the four on-disk bytes for t.
func EncodeTag(t Tag, layout TagLayout) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	if layout == TagLegacy {
		b[0] = legacyReserved
	}
	return b
}

// DecodeTag reads a tag from its four on-disk bytes.
func DecodeTag(b [4]byte, layout TagLayout) Tag {
	if layout == TagLegacy {
		b[0] = legacyReserved
	}
	return Tag(binary.LittleEndian.Uint32(b[:]))
}

package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goto-bus-stop/genie-drs/internal/drstype"
)

// baseHeader is the 64-byte header layout.
type baseHeader struct {
	Copyright       [drstype.BaseCopyrightSize]byte
	Version         [drstype.VersionSize]byte
	ArchiveType     [drstype.ArchiveTypeSize]byte
	TableCount      int32
	FirstFileOffset int32
}

// extendedHeader is the 84-byte header layout.
type extendedHeader struct {
	Copyright       [drstype.ExtendedCopyrightSize]byte
	Version         [drstype.VersionSize]byte
	ArchiveType     [drstype.ArchiveTypeSize]byte
	TableCount      int32
	FirstFileOffset int32
}

// DetectVariant probes the copyright field of b. b must hold at least
// ExtendedCopyrightSize bytes for the extended variant to be detected.
func DetectVariant(b []byte) drstype.Variant {
	if len(b) < drstype.ExtendedCopyrightSize {
		return drstype.VariantBase
	}
	if string(trimNUL(b[:drstype.ExtendedCopyrightSize])) == drstype.ExtendedCopyright {
		return drstype.VariantExtended
	}
	return drstype.VariantBase
}

// ParseHeader decodes a header, detecting its variant.
// b must hold at least ExtendedHeaderSize bytes.
func ParseHeader(b []byte) (drstype.Header, error) {
	if len(b) < drstype.ExtendedHeaderSize {
		return drstype.Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", drstype.ErrFormat, drstype.ExtendedHeaderSize, len(b))
	}
	return ParseHeaderVariant(b, DetectVariant(b))
}

// ParseHeaderVariant decodes a header using the given layout.
func ParseHeaderVariant(b []byte, v drstype.Variant) (drstype.Header, error) {
	if len(b) < v.HeaderSize() {
		return drstype.Header{}, fmt.Errorf("%w: %s header needs %d bytes, have %d", drstype.ErrFormat, v, v.HeaderSize(), len(b))
	}

	var h drstype.Header
	switch v {
	case drstype.VariantExtended:
		var raw extendedHeader
		if _, err := binary.Decode(b, binary.LittleEndian, &raw); err != nil {
			return drstype.Header{}, fmt.Errorf("%w: header: %v", drstype.ErrFormat, err)
		}
		h = drstype.Header{
			Copyright:       string(trimNUL(raw.Copyright[:])),
			Version:         string(trimNUL(raw.Version[:])),
			ArchiveType:     string(trimNUL(raw.ArchiveType[:])),
			TableCount:      raw.TableCount,
			FirstFileOffset: raw.FirstFileOffset,
		}
	default:
		var raw baseHeader
		if _, err := binary.Decode(b, binary.LittleEndian, &raw); err != nil {
			return drstype.Header{}, fmt.Errorf("%w: header: %v", drstype.ErrFormat, err)
		}
		h = drstype.Header{
			Copyright:       string(trimNUL(raw.Copyright[:])),
			Version:         string(trimNUL(raw.Version[:])),
			ArchiveType:     string(trimNUL(raw.ArchiveType[:])),
			TableCount:      raw.TableCount,
			FirstFileOffset: raw.FirstFileOffset,
		}
	}
	h.Variant = v

	if h.TableCount < 0 {
		return drstype.Header{}, fmt.Errorf("%w: negative table count %d", drstype.ErrFormat, h.TableCount)
	}
	if h.FirstFileOffset < 0 {
		return drstype.Header{}, fmt.Errorf("%w: negative first file offset %d", drstype.ErrFormat, h.FirstFileOffset)
	}
	return h, nil
}

// ReadHeader reads and decodes the header from r, whose total size is size.
//
// A source shorter than the extended header cannot hold one, so it is
// decoded as the base variant as long as the base header fits. This keeps
// empty base-variant archives, which are exactly 64 bytes, readable.
func ReadHeader(r io.ReaderAt, size int64) (drstype.Header, error) {
	if size < drstype.BaseHeaderSize {
		return drstype.Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", drstype.ErrFormat, drstype.BaseHeaderSize, size)
	}
	n := int64(drstype.ExtendedHeaderSize)
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	if err := ReadFullAt(r, buf, 0); err != nil {
		return drstype.Header{}, fmt.Errorf("read header: %w", err)
	}
	if n < drstype.ExtendedHeaderSize {
		return ParseHeaderVariant(buf, drstype.VariantBase)
	}
	return ParseHeader(buf)
}

// AppendHeader appends the encoded header to dst using h.Variant. String
// fields are truncated or zero-padded to their fixed widths.
func AppendHeader(dst []byte, h drstype.Header) []byte {
	switch h.Variant {
	case drstype.VariantExtended:
		var raw extendedHeader
		copy(raw.Copyright[:], h.Copyright)
		copy(raw.Version[:], h.Version)
		copy(raw.ArchiveType[:], h.ArchiveType)
		raw.TableCount = h.TableCount
		raw.FirstFileOffset = h.FirstFileOffset
		return mustAppend(dst, &raw)
	default:
		var raw baseHeader
		copy(raw.Copyright[:], h.Copyright)
		copy(raw.Version[:], h.Version)
		copy(raw.ArchiveType[:], h.ArchiveType)
		raw.TableCount = h.TableCount
		raw.FirstFileOffset = h.FirstFileOffset
		return mustAppend(dst, &raw)
	}
}

// mustAppend encodes a fixed-size value. Fixed-size structs cannot fail to
// encode, so an error here is a programming bug.
func mustAppend(dst []byte, v any) []byte {
	out, err := binary.Append(dst, binary.LittleEndian, v)
	if err != nil {
		panic(fmt.Sprintf("format: encode %T: %v", v, err))
	}
	return out
}

func trimNUL(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

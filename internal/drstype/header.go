package drstype

// Fixed record sizes of the on-disk format.
const (
	BaseHeaderSize     = 64
	ExtendedHeaderSize = 84
	TableRecordSize    = 12
	FileRecordSize     = 12

	BaseCopyrightSize     = 40
	ExtendedCopyrightSize = 60
	VersionSize           = 4
	ArchiveTypeSize       = 12
)

// Header defaults written by the builder.
const (
	// DefaultCopyright is the copyright text of base-variant archives.
	DefaultCopyright = "Copyright (c) 1997 Ensemble Studios.\x1a"

	// ExtendedCopyright marks the extended header variant.
	ExtendedCopyright = "Copyright (c) 2001 LucasArts Entertainment Company LLC"

	DefaultVersion     = "1.00"
	DefaultArchiveType = "tribe"
)

// Variant identifies one of the two header layouts.
type Variant uint8

const (
	// VariantBase has a 40-byte copyright field and a 64-byte header.
	VariantBase Variant = iota

	// VariantExtended has a 60-byte copyright field and an 84-byte header.
	VariantExtended
)

// HeaderSize returns the header width in bytes.
func (v Variant) HeaderSize() int {
	if v == VariantExtended {
		return ExtendedHeaderSize
	}
	return BaseHeaderSize
}

// CopyrightSize returns the copyright field width in bytes.
func (v Variant) CopyrightSize() int {
	if v == VariantExtended {
		return ExtendedCopyrightSize
	}
	return BaseCopyrightSize
}

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "base"
	case VariantExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Header is the fixed preamble of an archive.
type Header struct {
	// Copyright is the copyright text with trailing NUL padding removed.
	Copyright string

	// Version is the format version tag, typically "1.00".
	Version string

	// ArchiveType is the archive type tag, typically "tribe".
	ArchiveType string

	// TableCount is the number of table descriptors.
	TableCount int32

	// FirstFileOffset is the byte offset of the first payload.
	FirstFileOffset int32

	// Variant is the header layout, detected on parse.
	Variant Variant
}

// DirectorySize returns the size of the header, table directory, and file
// directory for the given counts.
func DirectorySize(v Variant, tables, files int) int64 {
	return int64(v.HeaderSize()) + TableRecordSize*int64(tables) + FileRecordSize*int64(files)
}

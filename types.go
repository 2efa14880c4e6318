package drs

import "github.com/goto-bus-stop/genie-drs/internal/drstype"

// Re-export types from internal/drstype for public API.
type (
	// Tag is a four-character type code such as "slp " or "bina".
	Tag = drstype.Tag

	// TagLayout selects how tags are stored in table descriptors.
	TagLayout = drstype.TagLayout

	// Variant identifies one of the two header layouts.
	Variant = drstype.Variant

	// Header is the fixed preamble of an archive.
	Header = drstype.Header

	// Table groups every entry sharing one type tag.
	Table = drstype.Table

	// Entry is one stored resource's directory record.
	Entry = drstype.Entry
)

// Re-export well-known tags.
const (
	TagSprite = drstype.TagSprite
	TagAudio  = drstype.TagAudio
	TagBinary = drstype.TagBinary
)

// Re-export tag layouts.
const (
	TagPacked = drstype.TagPacked
	TagLegacy = drstype.TagLegacy
)

// Re-export header variants.
const (
	VariantBase     = drstype.VariantBase
	VariantExtended = drstype.VariantExtended
)

// Re-export format sizes and header defaults.
const (
	BaseHeaderSize     = drstype.BaseHeaderSize
	ExtendedHeaderSize = drstype.ExtendedHeaderSize
	TableRecordSize    = drstype.TableRecordSize
	FileRecordSize     = drstype.FileRecordSize

	DefaultCopyright   = drstype.DefaultCopyright
	ExtendedCopyright  = drstype.ExtendedCopyright
	DefaultVersion     = drstype.DefaultVersion
	DefaultArchiveType = drstype.DefaultArchiveType
)

// ParseTag packs a four-character ASCII string into a Tag.
var ParseTag = drstype.ParseTag

// MustTag is like ParseTag but panics on error.
var MustTag = drstype.MustTag

package drs

import "github.com/goto-bus-stop/genie-drs/internal/drstype"

// Sentinel errors re-exported from internal/drstype.
var (
	// ErrFormat is returned when the archive directory is truncated or
	// structurally inconsistent.
	ErrFormat = drstype.ErrFormat

	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = drstype.ErrNotFound

	// ErrInvalidPayload is returned when a builder payload is neither a byte
	// buffer nor a byte stream.
	ErrInvalidPayload = drstype.ErrInvalidPayload

	// ErrInvalidTag is returned when a type tag is not four ASCII characters.
	ErrInvalidTag = drstype.ErrInvalidTag

	// ErrClosed is returned by operations on a closed archive.
	ErrClosed = drstype.ErrClosed

	// ErrSizeOverflow is returned when sizes or offsets exceed the int32
	// range of the on-disk format.
	ErrSizeOverflow = drstype.ErrSizeOverflow

	// ErrUnresolvedOffset is returned when a directory is serialized before
	// entry offsets have been assigned.
	ErrUnresolvedOffset = drstype.ErrUnresolvedOffset
)

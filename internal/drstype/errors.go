package drstype

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when the header, table directory, or file
	// directory is truncated or structurally inconsistent.
	ErrFormat = errors.New("drs: malformed archive")

	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("drs: entry not found")

	// ErrInvalidPayload is returned when a builder payload is neither a byte
	// buffer nor a readable byte stream.
	ErrInvalidPayload = errors.New("drs: invalid payload")

	// ErrInvalidTag is returned when a type tag is not four ASCII characters.
	ErrInvalidTag = errors.New("drs: invalid type tag")

	// ErrClosed is returned by operations on a closed archive.
	ErrClosed = errors.New("drs: archive closed")

	// ErrSizeOverflow is returned when sizes or offsets exceed the int32
	// range used by the on-disk format.
	ErrSizeOverflow = errors.New("drs: size overflow")

	// ErrUnresolvedOffset is returned when a directory is serialized before
	// entry offsets have been assigned.
	ErrUnresolvedOffset = errors.New("drs: unresolved entry offset")
)

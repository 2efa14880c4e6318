package drs

import "log/slog"

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// BuildWithVariant sets the header layout and the matching default
// copyright. The extended layout is only recognized by its copyright text,
// so it always uses ExtendedCopyright.
func BuildWithVariant(v Variant) BuildOption {
	return func(b *Builder) {
		b.header.Variant = v
		switch {
		case v == VariantExtended:
			b.header.Copyright = ExtendedCopyright
		case b.header.Copyright == ExtendedCopyright:
			b.header.Copyright = DefaultCopyright
		}
	}
}

// BuildWithCopyright sets the copyright text of a base-variant archive. It
// is truncated to 40 bytes when written. Extended archives must keep
// ExtendedCopyright; Layout fails with ErrFormat otherwise.
func BuildWithCopyright(s string) BuildOption {
	return func(b *Builder) {
		b.header.Copyright = s
	}
}

// BuildWithVersion sets the 4-byte version tag.
func BuildWithVersion(s string) BuildOption {
	return func(b *Builder) {
		b.header.Version = s
	}
}

// BuildWithArchiveType sets the 12-byte archive type tag.
func BuildWithArchiveType(s string) BuildOption {
	return func(b *Builder) {
		b.header.ArchiveType = s
	}
}

// BuildWithTagLayout sets how table tags are encoded.
func BuildWithTagLayout(l TagLayout) BuildOption {
	return func(b *Builder) {
		b.tagLayout = l
	}
}

// BuildWithLogger sets the logger for build operations.
// If not set, logging is disabled.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// Package manifest loads the YAML build descriptions used by "drs build".
//
// A manifest names the header fields of the archive and lists its entries
// in order. Each entry's payload is either inline text or a file path
// relative to the manifest. Files ending in ".zst" are decompressed while
// they are read.
//
//	variant: extended
//	version: "1.00"
//	type: tribe
//	entries:
//	  - tag: slp
//	    id: 1
//	    file: sprites/1.slp.zst
//	  - tag: bina
//	    id: 50500
//	    data: "JASC-PAL\r\n0100\r\n256\r\n"
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	drs "github.com/goto-bus-stop/genie-drs"
)

// ErrInvalid is returned for manifests that cannot describe an archive.
var ErrInvalid = errors.New("manifest: invalid")

// Manifest describes an archive to build.
type Manifest struct {
	// Variant is "base" (default) or "extended".
	Variant string `yaml:"variant"`

	// Copyright overrides the default copyright text of a base archive.
	// Extended archives are identified by their copyright, so it cannot be
	// set together with variant "extended".
	Copyright string `yaml:"copyright,omitempty"`

	// Version is the 4-byte version field. Default: "1.00"
	Version string `yaml:"version,omitempty"`

	// Type is the 12-byte archive type field. Default: "tribe"
	Type string `yaml:"type,omitempty"`

	// TagLayout is "packed" (default) or "legacy".
	TagLayout string `yaml:"tag_layout,omitempty"`

	// Entries are added in order.
	Entries []Entry `yaml:"entries"`

	// dir resolves relative entry files.
	dir string
}

// Entry is one archive entry.
type Entry struct {
	// Tag is the table tag. Tags shorter than four characters are padded
	// with spaces, so "slp" names the "slp " table.
	Tag string `yaml:"tag"`

	ID int32 `yaml:"id"`

	// File is the payload path, relative to the manifest.
	File string `yaml:"file,omitempty"`

	// Data is an inline payload.
	Data *string `yaml:"data,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest. Relative entry files resolve
// against the working directory.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks header fields and entries without touching any file.
func (m *Manifest) Validate() error {
	v, err := m.variant()
	if err != nil {
		return err
	}
	if v == drs.VariantExtended && m.Copyright != "" && m.Copyright != drs.ExtendedCopyright {
		return fmt.Errorf("%w: copyright cannot be changed for the extended variant", ErrInvalid)
	}
	layout, err := m.tagLayout()
	if err != nil {
		return err
	}
	for i, e := range m.Entries {
		tag, err := e.tag()
		if err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrInvalid, i, err)
		}
		if !layout.Holds(tag) {
			return fmt.Errorf("%w: entry %d: tag %q does not fit the %s layout", ErrInvalid, i, tag.String(), layout)
		}
		if (e.File == "") == (e.Data == nil) {
			return fmt.Errorf("%w: entry %d (id %d): exactly one of file or data is required", ErrInvalid, i, e.ID)
		}
	}
	return nil
}

func (m *Manifest) variant() (drs.Variant, error) {
	switch strings.ToLower(m.Variant) {
	case "", "base":
		return drs.VariantBase, nil
	case "extended":
		return drs.VariantExtended, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalid, m.Variant)
	}
}

func (m *Manifest) tagLayout() (drs.TagLayout, error) {
	switch strings.ToLower(m.TagLayout) {
	case "", "packed":
		return drs.TagPacked, nil
	case "legacy":
		return drs.TagLegacy, nil
	default:
		return 0, fmt.Errorf("%w: unknown tag layout %q", ErrInvalid, m.TagLayout)
	}
}

func (e Entry) tag() (drs.Tag, error) {
	s := e.Tag
	if n := len(s); n > 0 && n < 4 {
		s += strings.Repeat(" ", 4-n)
	}
	return drs.ParseTag(s)
}

// BuildOptions returns the builder options for the manifest's header.
func (m *Manifest) BuildOptions() ([]drs.BuildOption, error) {
	v, err := m.variant()
	if err != nil {
		return nil, err
	}
	layout, err := m.tagLayout()
	if err != nil {
		return nil, err
	}
	opts := []drs.BuildOption{drs.BuildWithVariant(v), drs.BuildWithTagLayout(layout)}
	if m.Copyright != "" {
		opts = append(opts, drs.BuildWithCopyright(m.Copyright))
	}
	if m.Version != "" {
		opts = append(opts, drs.BuildWithVersion(m.Version))
	}
	if m.Type != "" {
		opts = append(opts, drs.BuildWithArchiveType(m.Type))
	}
	return opts, nil
}

// Populate adds every entry to b. File payloads are streamed; the returned
// closer releases them and must be called once b has been serialized.
// On error every file opened so far is already closed.
func (m *Manifest) Populate(b *drs.Builder) (io.Closer, error) {
	var files closers
	for _, e := range m.Entries {
		tag, err := e.tag()
		if err != nil {
			files.Close()
			return nil, err
		}
		if e.Data != nil {
			if _, err := b.AddBytes(tag, e.ID, []byte(*e.Data)); err != nil {
				files.Close()
				return nil, err
			}
			continue
		}
		r, err := m.open(e.File)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		files = append(files, r)
		if _, err := b.AddReader(tag, e.ID, r); err != nil {
			files.Close()
			return nil, err
		}
	}
	return files, nil
}

// open opens an entry file, decompressing ".zst" files.
func (m *Manifest) open(name string) (io.ReadCloser, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd %s: %w", name, err)
	}
	return &zstdFile{Decoder: dec, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

package drs

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ByteSource provides positioned reads over archive storage.
//
// Implementations exist for local files and HTTP range requests (see the
// http subpackage). ReadAt must be safe for concurrent use.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Storage is a ByteSource that holds an underlying resource.
type Storage interface {
	ByteSource
	io.Closer
}

// Opener opens the storage for an archive path.
type Opener func(ctx context.Context, path string) (Storage, error)

// fileSource wraps *os.File to implement Storage.
// os.File has ReadAt but not Size, so we cache the size at open.
type fileSource struct {
	file *os.File
	size int64
}

// OpenFile opens a local archive file for positioned reads. It is the
// default Opener.
func OpenFile(_ context.Context, path string) (Storage, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return &fileSource{file: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the size of the file at open.
func (fs *fileSource) Size() int64 {
	return fs.size
}

// Close closes the file.
func (fs *fileSource) Close() error {
	return fs.file.Close()
}

// Interface compliance for fileSource.
var _ Storage = (*fileSource)(nil)

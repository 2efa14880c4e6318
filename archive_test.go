package drs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goto-bus-stop/genie-drs/internal/testutil"
)

// mockOpener hands out src and counts calls.
func mockOpener(src *testutil.MockByteSource, calls *atomic.Int64) Opener {
	return func(context.Context, string) (Storage, error) {
		calls.Add(1)
		return src, nil
	}
}

func TestOpen_IsLazy(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	var calls atomic.Int64
	a := Open("test.drs", WithOpener(mockOpener(src, &calls)))
	defer a.Close()

	assert.Equal(t, int64(0), calls.Load())
	assert.Equal(t, int64(0), src.Reads())

	n, err := a.FileCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(1), calls.Load())

	// Further queries reuse the loaded directory.
	reads := src.Reads()
	_, ok, err := a.Lookup(context.Background(), 50500)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, reads, src.Reads())
	assert.Equal(t, int64(1), calls.Load())
}

func TestArchive_SingleLoadInFlight(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	release := src.Block()
	var calls atomic.Int64
	a := Open("test.drs", WithOpener(mockOpener(src, &calls)))
	defer a.Close()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Entry, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, _, err := a.Lookup(context.Background(), 5000)
			results[i], errs[i] = e, err
		}()
	}

	// Give callers time to queue behind the blocked load.
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	// Header, table directory, file directory.
	assert.Equal(t, int64(3), src.Reads())
	for i := range callers {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestArchive_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	release := src.Block()
	var calls atomic.Int64
	a := Open("test.drs", WithOpener(mockOpener(src, &calls)))
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := a.Tables(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	tables, err := a.Tables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 3)
	assert.Equal(t, int64(1), calls.Load())
}

func TestArchive_FailedLoadCanRetry(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	boom := errors.New("transient")
	var calls atomic.Int64
	opener := func(context.Context, string) (Storage, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return src, nil
	}
	a := Open("test.drs", WithOpener(opener))
	defer a.Close()

	err := a.Load(context.Background())
	require.ErrorIs(t, err, boom)

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, int64(2), calls.Load())
}

func TestArchive_FormatErrorClosesStorage(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(make([]byte, 10))
	var calls atomic.Int64
	a := Open("bad.drs", WithOpener(mockOpener(src, &calls)))

	err := a.Load(context.Background())
	require.ErrorIs(t, err, ErrFormat)
	assert.True(t, src.Closed())
}

func TestArchive_Close(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	var calls atomic.Int64
	a := Open("test.drs", WithOpener(mockOpener(src, &calls)))
	require.NoError(t, a.Load(context.Background()))

	require.NoError(t, a.Close())
	assert.True(t, src.Closed())
	require.NoError(t, a.Close())

	ctx := context.Background()
	_, _, err := a.Lookup(ctx, 1)
	require.ErrorIs(t, err, ErrClosed)
	_, err = a.ReadFile(ctx, 1)
	require.ErrorIs(t, err, ErrClosed)
	_, err = a.Entries(ctx)
	require.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int64(1), calls.Load())
}

func TestNewArchive_DoesNotOwnSource(t *testing.T) {
	t.Parallel()

	src := testutil.NewMockByteSource(testutil.BuildTestArchive(t, VariantBase, sampleEntries()))
	a := NewArchive(src)
	_, err := a.Header(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.False(t, src.Closed())
}

func TestOpen_LocalFile(t *testing.T) {
	t.Parallel()

	data := testutil.BuildTestArchive(t, VariantExtended, sampleEntries())
	path := filepath.Join(t.TempDir(), "sounds.drs")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	a := Open(path)
	defer a.Close()

	ctx := context.Background()
	size, err := a.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	h, err := a.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, VariantExtended, h.Variant)
	assert.Equal(t, ExtendedCopyright, h.Copyright)

	got, err := a.ReadFile(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF....WAVE"), got)
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	a := Open(filepath.Join(t.TempDir(), "missing.drs"))
	err := a.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrFormat)
}

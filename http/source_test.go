package http_test

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drs "github.com/goto-bus-stop/genie-drs"
	drshttp "github.com/goto-bus-stop/genie-drs/http"
)

func serve(t *testing.T, data []byte, ranges *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if ranges != nil && r.Header.Get("Range") != "" {
			ranges.Add(1)
		}
		w.Header().Set("ETag", `"archive-v1"`)
		nethttp.ServeContent(w, r, "archive.drs", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)
	return server
}

func buildArchive(t *testing.T) []byte {
	t.Helper()
	b := drs.NewBuilder(drs.BuildWithVariant(drs.VariantExtended))
	_, err := b.AddEntry(drs.TagSprite, 1, "sprite-one")
	require.NoError(t, err)
	_, err = b.AddEntry(drs.TagAudio, 5000, "RIFF....WAVE")
	require.NoError(t, err)
	_, err = b.AddEntry(drs.TagBinary, 50500, bytes.Repeat([]byte{7}, 4096))
	require.NoError(t, err)
	data, err := b.Bytes(context.Background())
	require.NoError(t, err)
	return data
}

func TestSource_ReadAt(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	server := serve(t, data, nil)

	src, err := drshttp.NewSource(context.Background(), server.URL, drshttp.WithConditionalHeaders())
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), src.Size())

	tests := []struct {
		name    string
		bufSize int
		offset  int64
		wantN   int
		wantErr error
		want    string
	}{
		{"read from middle", 5, 6, 5, nil, "world"},
		{"read past end returns EOF", 10, int64(len(data) - 3), 3, io.EOF, "rld"},
		{"offset at end", 4, int64(len(data)), 0, io.EOF, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := make([]byte, tt.bufSize)
			n, err := src.ReadAt(buf, tt.offset)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
	require.NoError(t, src.Close())
}

func TestOpen_ReadsArchive(t *testing.T) {
	t.Parallel()

	data := buildArchive(t)
	var ranges atomic.Int32
	server := serve(t, data, &ranges)
	ctx := context.Background()

	a := drshttp.Open(server.URL)
	defer a.Close()
	assert.Zero(t, ranges.Load(), "Open performs no requests")

	h, err := a.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, drs.VariantExtended, h.Variant)

	size, err := a.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	local := drs.NewArchive(bytes.NewReader(data))
	for _, id := range []int32{1, 5000, 50500} {
		want, err := local.ReadFile(ctx, id)
		require.NoError(t, err)
		got, err := a.ReadFile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "entry %d", id)
	}
}

func TestNewSource_RangeUnsupported(t *testing.T) {
	t.Parallel()

	data := []byte("range unsupported")
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method == nethttp.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	_, err := drshttp.NewSource(context.Background(), server.URL)
	require.ErrorIs(t, err, drshttp.ErrRangeUnsupported)

	a := drshttp.Open(server.URL)
	_, err = a.FileCount(context.Background())
	require.ErrorIs(t, err, drshttp.ErrRangeUnsupported)
}

func TestSource_ReadAt_RetriesWithoutIfMatchOn412(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	etag := `"retry-test"`
	var withIfMatch, withoutIfMatch atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method == nethttp.MethodGet && r.Header.Get("Range") == "bytes=6-10" {
			if r.Header.Get("If-Match") != "" {
				withIfMatch.Add(1)
				w.WriteHeader(nethttp.StatusPreconditionFailed)
				return
			}
			withoutIfMatch.Add(1)
		}
		w.Header().Set("ETag", etag)
		nethttp.ServeContent(w, r, "data", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)

	src, err := drshttp.NewSource(context.Background(), server.URL, drshttp.WithConditionalHeaders())
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := src.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))
	assert.Equal(t, int32(1), withIfMatch.Load())
	assert.Equal(t, int32(1), withoutIfMatch.Load())
}

func TestSource_SendsHeaders(t *testing.T) {
	t.Parallel()

	var missing atomic.Int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			missing.Add(1)
		}
		nethttp.ServeContent(w, r, "data", time.Time{}, bytes.NewReader([]byte("abc")))
	}))
	t.Cleanup(server.Close)

	src, err := drshttp.NewSource(context.Background(), server.URL,
		drshttp.WithHeader("Authorization", "Bearer token"),
		drshttp.WithClient(server.Client()))
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = src.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Zero(t, missing.Load())
}

func TestNewSource_EmptyResource(t *testing.T) {
	t.Parallel()

	server := serve(t, nil, nil)
	src, err := drshttp.NewSource(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Zero(t, src.Size())

	n, err := src.ReadAt(make([]byte, 4), 0)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

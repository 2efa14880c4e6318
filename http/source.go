// Package http opens archives served over HTTP. Entries are fetched with
// range requests, so only the directory and the entries actually read are
// transferred.
package http //nolint:revive // intentional naming for domain clarity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"

	drs "github.com/goto-bus-stop/genie-drs"
)

// ErrRangeUnsupported is returned when the server ignores Range headers.
var ErrRangeUnsupported = errors.New("drs/http: range requests not supported")

// Source implements random access reads via HTTP range requests.
// It satisfies drs.Storage; Close releases idle connections.
type Source struct {
	ctx          context.Context
	url          string
	client       *nethttp.Client
	headers      nethttp.Header
	size         int64
	etag         string
	lastModified string
	pinReads     bool
	logger       *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithConditionalHeaders pins reads to the archive version seen when the
// source was opened, using If-Match or If-Unmodified-Since. A server that
// rejects the precondition is retried once without it.
func WithConditionalHeaders() Option {
	return func(s *Source) {
		s.pinReads = true
	}
}

// WithLogger sets the logger for request events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource probes url with a one-byte range request for its size and
// validators and returns a Source for it. ctx bounds the probe and every
// later read.
func NewSource(ctx context.Context, url string, opts ...Option) (*Source, error) {
	s := &Source{
		ctx:    ctx,
		url:    url,
		client: nethttp.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	if err := s.probe(); err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	s.log().Debug("opened remote archive", "url", url, "size", s.size, "etag", s.etag)
	return s, nil
}

// Opener returns a drs.Opener that treats archive paths as URLs.
func Opener(opts ...Option) drs.Opener {
	return func(ctx context.Context, url string) (drs.Storage, error) {
		s, err := NewSource(ctx, url, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Open returns a lazily opened archive handle for the archive at url.
func Open(url string, opts ...Option) *drs.Archive {
	var probe Source
	for _, opt := range opts {
		opt(&probe)
	}
	archiveOpts := []drs.Option{drs.WithOpener(Opener(opts...))}
	if probe.logger != nil {
		archiveOpts = append(archiveOpts, drs.WithLogger(probe.logger))
	}
	return drs.Open(url, archiveOpts...)
}

func (s *Source) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

var _ drs.Storage = (*Source)(nil)

// Size returns the total size of the remote archive.
func (s *Source) Size() int64 {
	return s.size
}

// Close releases idle connections held by the client.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// ReadAt reads len(p) bytes at off with a single range request. Reads that
// run past the end of the archive return the available bytes and io.EOF.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}
	want := int(min(int64(len(p)), s.size-off))

	resp, err := s.fetch(off, off+int64(want)-1)
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	if err := rangeStatus(resp); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("read %d bytes at %d: %w", want, off, err)
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// probe learns the archive size from the Content-Range of a one-byte read.
// An empty archive answers 416 with "bytes */0".
func (s *Source) probe() error {
	resp, err := s.do(0, 0, false)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != nethttp.StatusRequestedRangeNotSatisfiable {
		if err := rangeStatus(resp); err != nil {
			return err
		}
	}
	crange := resp.Header.Get("Content-Range")
	if crange == "" {
		return fmt.Errorf("range probe: %s without Content-Range", resp.Status)
	}
	size, err := parseContentRange(crange)
	if err != nil {
		return err
	}
	if resp.StatusCode == nethttp.StatusRequestedRangeNotSatisfiable && size != 0 {
		return fmt.Errorf("range probe failed: %s", resp.Status)
	}
	s.size = size
	s.etag = resp.Header.Get("ETag")
	s.lastModified = resp.Header.Get("Last-Modified")
	return nil
}

// fetch requests the inclusive range [off, end]. With conditional headers
// enabled the request is pinned to the probed validators; a 412 answer is
// retried once without them.
func (s *Source) fetch(off, end int64) (*nethttp.Response, error) {
	pinned := s.pinReads && (s.etag != "" || s.lastModified != "")
	resp, err := s.do(off, end, pinned)
	if err != nil || !pinned || resp.StatusCode != nethttp.StatusPreconditionFailed {
		return resp, err
	}
	drain(resp)
	s.log().Debug("precondition rejected, retrying unconditionally", "url", s.url, "offset", off)
	return s.do(off, end, false)
}

func (s *Source) do(off, end int64, pinned bool) (*nethttp.Response, error) {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, s.url, nethttp.NoBody)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		// a compressed body would not match the requested byte range
		req.Header.Set("Accept-Encoding", "identity")
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))
	if pinned {
		if s.etag != "" {
			req.Header.Set("If-Match", s.etag)
		} else {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	return s.client.Do(req)
}

// rangeStatus maps a range response status to an error.
func rangeStatus(resp *nethttp.Response) error {
	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
		return nil
	case nethttp.StatusRequestedRangeNotSatisfiable:
		return io.EOF
	case nethttp.StatusOK:
		return ErrRangeUnsupported
	default:
		return fmt.Errorf("range request failed: %s", resp.Status)
	}
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *nethttp.Response) {
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain for connection reuse
	_ = resp.Body.Close()
}

// parseContentRange extracts the total size from a Content-Range header value.
// It accepts "bytes start-end/size" and "bytes */size".
func parseContentRange(value string) (int64, error) {
	value = strings.TrimSpace(value)
	rest, ok := strings.CutPrefix(value, "bytes ")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}

package format

import "io"

// ReadFullAt fills buf from r at off. A read that ends early is reported
// as io.ErrUnexpectedEOF; io.EOF alongside a full buffer is not an error.
func ReadFullAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

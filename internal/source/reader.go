package source

import (
	"errors"
	"fmt"
	"io"
)

const (
	DefaultMaxInputSize = 32 * 1024 * 1024 // 32MB, the portal's form limit
	MinMaxInputSize     = 64 * 1024        // 64KB
	MaxMaxInputSize     = 512 * 1024 * 1024
)

var ErrTooLarge = errors.New("file exceeds maximum input size")

// CappedReader fails once more than limit bytes have been read instead of
// silently truncating like io.LimitReader.
type CappedReader struct {
	reader io.Reader
	limit  int64
	read   int64
}

func NewCappedReader(reader io.Reader, limit int64) (*CappedReader, error) {
	if limit < MinMaxInputSize || limit > MaxMaxInputSize {
		return nil, fmt.Errorf("invalid input size limit: must be between %d and %d bytes", MinMaxInputSize, MaxMaxInputSize)
	}

	return &CappedReader{
		reader: reader,
		limit:  limit,
	}, nil
}

func (r *CappedReader) Read(p []byte) (n int, err error) {
	if r.read > r.limit {
		return 0, ErrTooLarge
	}
	// Allow one byte past the limit so an exact-size file still reaches EOF.
	if remaining := r.limit - r.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.reader.Read(p)
	r.read += int64(n)
	if r.read > r.limit {
		return n, ErrTooLarge
	}
	return n, err
}

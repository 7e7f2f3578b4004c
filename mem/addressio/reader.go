package addressio

import (
	"bufio"
	"errors"
	"io"
)

// A Reader reads addresses from a stream of records.
type Reader struct {
	r      *bufio.Reader
	format Format
	buf    []byte
	count  uint64
}

// NewReader creates a Reader that reads records of the given format.
func NewReader(r io.Reader, format Format) (*Reader, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &Reader{
		r:      bufio.NewReader(r),
		format: format,
		buf:    make([]byte, format.WordSize),
	}, nil
}

// ReadAddress returns the next address. It returns io.EOF when the stream
// ends at a record boundary.
func (r *Reader) ReadAddress() (uint64, error) {
	_, err := io.ReadFull(r.r, r.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, ErrTruncatedRecord
	}

	if err != nil {
		return 0, err
	}

	r.count++

	return r.format.decode(r.buf), nil
}

// ReadAll returns all the remaining addresses.
func (r *Reader) ReadAll() ([]uint64, error) {
	var addrs []uint64

	for {
		addr, err := r.ReadAddress()
		if errors.Is(err, io.EOF) {
			return addrs, nil
		}

		if err != nil {
			return addrs, err
		}

		addrs = append(addrs, addr)
	}
}

// Count returns the number of addresses read so far.
func (r *Reader) Count() uint64 {
	return r.count
}

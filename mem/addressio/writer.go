package addressio

import (
	"bufio"
	"io"
)

// A Writer writes addresses as a stream of records. Records are buffered
// until Flush is called.
type Writer struct {
	w      *bufio.Writer
	format Format
	buf    []byte
	count  uint64
}

// NewWriter creates a Writer that writes records of the given format.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &Writer{
		w:      bufio.NewWriter(w),
		format: format,
		buf:    make([]byte, format.WordSize),
	}, nil
}

// WriteAddress appends one address to the stream.
func (w *Writer) WriteAddress(addr uint64) error {
	if err := w.format.encode(w.buf, addr); err != nil {
		return err
	}

	if _, err := w.w.Write(w.buf); err != nil {
		return err
	}

	w.count++

	return nil
}

// Flush writes the buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Count returns the number of addresses written so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Package addressio reads and writes streams of addresses stored as
// fixed-width unsigned integers.
package addressio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncatedRecord is returned when a stream ends in the middle of a
	// record.
	ErrTruncatedRecord = errors.New("truncated address record")

	// ErrUnsupportedWordSize is returned for record widths other than 4 and
	// 8 bytes.
	ErrUnsupportedWordSize = errors.New("unsupported word size")

	// ErrAddressOverflow is returned when an address does not fit in a record.
	ErrAddressOverflow = errors.New("address does not fit in record")
)

// Format describes how an address is laid out in a stream.
type Format struct {
	WordSize  int
	ByteOrder binary.ByteOrder
}

// DefaultFormat stores each address as an 8-byte little-endian integer.
var DefaultFormat = Format{
	WordSize:  8,
	ByteOrder: binary.LittleEndian,
}

// Validate checks that the format can be used by readers and writers.
func (f Format) Validate() error {
	if f.WordSize != 4 && f.WordSize != 8 {
		return fmt.Errorf("%w: %d", ErrUnsupportedWordSize, f.WordSize)
	}

	if f.ByteOrder == nil {
		return errors.New("byte order not set")
	}

	return nil
}

func (f Format) decode(buf []byte) uint64 {
	if f.WordSize == 4 {
		return uint64(f.ByteOrder.Uint32(buf))
	}

	return f.ByteOrder.Uint64(buf)
}

func (f Format) encode(buf []byte, addr uint64) error {
	if f.WordSize == 4 {
		if addr > 0xffffffff {
			return fmt.Errorf("%w: 0x%x in %d bytes",
				ErrAddressOverflow, addr, f.WordSize)
		}

		f.ByteOrder.PutUint32(buf, uint32(addr))

		return nil
	}

	f.ByteOrder.PutUint64(buf, addr)

	return nil
}

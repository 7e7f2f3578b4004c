package vm

import "fmt"

// An AddressSplitter knows how many bits of an address select the page (or
// frame) and how many select the byte within it.
type AddressSplitter struct {
	offsetBits uint
	pageBits   uint
	frameBits  uint
	offsetMask uint64
}

// NewAddressSplitter derives the address layout from the configuration.
func NewAddressSplitter(c Config) (AddressSplitter, error) {
	if err := c.Validate(); err != nil {
		return AddressSplitter{}, err
	}

	offsetBits := log2(c.BytesPerPage)
	s := AddressSplitter{
		offsetBits: offsetBits,
		pageBits:   log2(c.VirtualMemorySize) - offsetBits,
		frameBits:  log2(c.PhysicalMemorySize) - offsetBits,
		offsetMask: (uint64(1) << offsetBits) - 1,
	}

	if s.NumPages() > MaxTableEntries || s.NumFrames() > MaxTableEntries {
		return AddressSplitter{}, fmt.Errorf(
			"%w: %d pages and %d frames exceed the limit of %d entries",
			ErrAllocationFailure, s.NumPages(), s.NumFrames(), MaxTableEntries)
	}

	return s, nil
}

// Split decomposes a logical address into its page number and offset.
func (s AddressSplitter) Split(la uint64) (page, offset uint64, err error) {
	page = la >> s.offsetBits
	offset = la & s.offsetMask

	if page >= s.NumPages() {
		return 0, 0, fmt.Errorf("%w: page %d of address 0x%x, only %d pages",
			ErrInvalidPageNumber, page, la, s.NumPages())
	}

	return page, offset, nil
}

// Join composes a physical address from a frame number and an offset.
func (s AddressSplitter) Join(frame int, offset uint64) uint64 {
	return uint64(frame)<<s.offsetBits | offset&s.offsetMask
}

// OffsetBits returns the number of bits that address a byte within a page.
func (s AddressSplitter) OffsetBits() uint {
	return s.offsetBits
}

// PageBits returns the number of bits of the page number.
func (s AddressSplitter) PageBits() uint {
	return s.pageBits
}

// FrameBits returns the number of bits of the frame number.
func (s AddressSplitter) FrameBits() uint {
	return s.frameBits
}

// OffsetMask returns the mask that extracts the offset of an address.
func (s AddressSplitter) OffsetMask() uint64 {
	return s.offsetMask
}

// NumPages returns the number of pages in the virtual memory.
func (s AddressSplitter) NumPages() uint64 {
	return uint64(1) << s.pageBits
}

// NumFrames returns the number of frames in the physical memory, including
// the reserved frame.
func (s AddressSplitter) NumFrames() uint64 {
	return uint64(1) << s.frameBits
}

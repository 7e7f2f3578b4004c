// Package vm provides the models for address translations: the layout of
// logical and physical addresses, the page table, and the bookkeeping of
// physical frames used for demand paging.
package vm

import (
	"fmt"
	"math/bits"
)

// ReservedFrame is never handed out to a page. Frame 0 is kept away from user
// pages regardless of the memory sizes.
const ReservedFrame = 0

// MaxTableEntries bounds the number of pages or frames a configuration may
// describe.
const MaxTableEntries = 1 << 28

// Config describes the three sizes that determine a paging layout. All sizes
// are in bytes and must be powers of two.
type Config struct {
	BytesPerPage       uint64
	VirtualMemorySize  uint64
	PhysicalMemorySize uint64
}

// LRUPresetConfig is the layout with 128-byte pages, 32 pages, and 8 frames.
var LRUPresetConfig = Config{
	BytesPerPage:       128,
	VirtualMemorySize:  4096,
	PhysicalMemorySize: 1024,
}

// Validate checks that the configuration describes a usable layout.
func (c Config) Validate() error {
	sizes := []struct {
		name  string
		value uint64
	}{
		{"bytes per page", c.BytesPerPage},
		{"virtual memory size", c.VirtualMemorySize},
		{"physical memory size", c.PhysicalMemorySize},
	}

	for _, s := range sizes {
		if s.value == 0 {
			return fmt.Errorf("%w: %s must be positive",
				ErrInvalidConfiguration, s.name)
		}

		if !isPowerOfTwo(s.value) {
			return fmt.Errorf("%w: %s %d is not a power of two",
				ErrInvalidConfiguration, s.name, s.value)
		}
	}

	if c.BytesPerPage > c.VirtualMemorySize {
		return fmt.Errorf(
			"%w: page size %d exceeds virtual memory size %d",
			ErrInvalidConfiguration, c.BytesPerPage, c.VirtualMemorySize)
	}

	if c.BytesPerPage > c.PhysicalMemorySize {
		return fmt.Errorf(
			"%w: page size %d exceeds physical memory size %d",
			ErrInvalidConfiguration, c.BytesPerPage, c.PhysicalMemorySize)
	}

	return nil
}

func isPowerOfTwo(x uint64) bool {
	return bits.OnesCount64(x) == 1
}

// log2 returns the exponent of a power of two.
func log2(x uint64) uint {
	return uint(bits.TrailingZeros64(x))
}

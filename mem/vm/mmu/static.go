package mmu

import (
	"fmt"
	"math"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/mem/vm"
)

// DefaultStaticTable maps 8 pages of 128 bytes. Page 7 is not mapped.
var DefaultStaticTable = []int{2, 4, 1, 7, 3, 5, 6, vm.NoFrame}

// StaticComp translates addresses with a page table that never changes. A
// page without a frame cannot be accessed.
type StaticComp struct {
	hooking.HookableBase

	name       string
	table      []int
	log2Page   uint
	offsetMask uint64
	stats      Stats
}

// Name returns the name of the translator.
func (c *StaticComp) Name() string {
	return c.name
}

// Stats returns the counters of the translations so far. Static translations
// never fault.
func (c *StaticComp) Stats() Stats {
	return c.stats
}

// Run translates every address from the source into the sink.
func (c *StaticComp) Run(src AddressSource, sink AddressSink) (Stats, error) {
	err := run(c, src, sink)
	return c.stats, err
}

// Translate converts a logical address with the fixed page table.
func (c *StaticComp) Translate(la uint64) (uint64, error) {
	page := la >> c.log2Page
	offset := la & c.offsetMask

	if page >= uint64(len(c.table)) || c.table[page] == vm.NoFrame {
		return 0, fmt.Errorf("%w: page %d of address 0x%x is not mapped",
			vm.ErrInvalidPageNumber, page, la)
	}

	frame := c.table[page]
	pa := uint64(frame)<<c.log2Page | offset

	c.stats.Accesses++
	c.stats.Hits++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosTranslate,
		Item: Translation{
			Seq:          c.stats.Accesses,
			LogicalAddr:  la,
			Page:         page,
			Offset:       offset,
			Frame:        frame,
			PhysicalAddr: pa,
		},
	})

	return pa, nil
}

// A StaticBuilder can build StaticComp translators.
type StaticBuilder struct {
	table        []int
	log2PageSize uint64
}

// MakeStaticBuilder creates a builder with the default table and 128-byte
// pages.
func MakeStaticBuilder() StaticBuilder {
	return StaticBuilder{
		table:        DefaultStaticTable,
		log2PageSize: 7,
	}
}

// WithTable sets the frame of each page. Use vm.NoFrame for pages that are
// not mapped.
func (b StaticBuilder) WithTable(table []int) StaticBuilder {
	b.table = table
	return b
}

// WithLog2PageSize sets the page size.
func (b StaticBuilder) WithLog2PageSize(log2PageSize uint64) StaticBuilder {
	b.log2PageSize = log2PageSize
	return b
}

// Build returns a newly created StaticComp.
func (b StaticBuilder) Build(name string) (*StaticComp, error) {
	if b.log2PageSize >= 64 {
		return nil, fmt.Errorf("%w: log2 page size %d is too large",
			vm.ErrInvalidConfiguration, b.log2PageSize)
	}

	maxFrame := uint64(math.MaxUint64) >> b.log2PageSize

	for page, frame := range b.table {
		if frame < vm.NoFrame {
			return nil, fmt.Errorf("%w: page %d maps to frame %d",
				vm.ErrInvalidConfiguration, page, frame)
		}

		if frame != vm.NoFrame && uint64(frame) > maxFrame {
			return nil, fmt.Errorf(
				"%w: frame %d of page %d does not fit in an address",
				vm.ErrInvalidConfiguration, frame, page)
		}
	}

	table := make([]int, len(b.table))
	copy(table, b.table)

	return &StaticComp{
		name:       name,
		table:      table,
		log2Page:   uint(b.log2PageSize),
		offsetMask: (uint64(1) << b.log2PageSize) - 1,
	}, nil
}

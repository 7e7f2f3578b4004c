package mmu

import (
	"fmt"

	"github.com/sarchlab/pagesim/mem/vm"
)

// A Builder can build MMU component
type Builder struct {
	config    vm.Config
	pageTable vm.PageTable
}

// MakeBuilder creates a new builder. By default, the MMU uses 128-byte pages,
// 32 pages of virtual memory, and 8 frames of physical memory.
func MakeBuilder() Builder {
	return Builder{
		config: vm.LRUPresetConfig,
	}
}

// WithConfig sets all the memory sizes at once.
func (b Builder) WithConfig(config vm.Config) Builder {
	b.config = config
	return b
}

// WithBytesPerPage sets the page size.
func (b Builder) WithBytesPerPage(n uint64) Builder {
	b.config.BytesPerPage = n
	return b
}

// WithVirtualMemorySize sets the number of bytes the logical addresses cover.
func (b Builder) WithVirtualMemorySize(n uint64) Builder {
	b.config.VirtualMemorySize = n
	return b
}

// WithPhysicalMemorySize sets the number of bytes the physical addresses
// cover.
func (b Builder) WithPhysicalMemorySize(n uint64) Builder {
	b.config.PhysicalMemorySize = n
	return b
}

// WithPageTable sets the page table that the MMU uses. The page table must
// have one entry per page and all its entries must be invalid.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// Build returns a newly created MMU component
func (b Builder) Build(name string) (*Comp, error) {
	splitter, err := vm.NewAddressSplitter(b.config)
	if err != nil {
		return nil, err
	}

	numFrames := int(splitter.NumFrames())

	mmu := &Comp{
		name:     name,
		splitter: splitter,
		frames:   vm.NewFrameAllocator(numFrames),
		lru:      vm.NewLRUTracker(numFrames),
	}

	err = b.createPageTable(mmu)
	if err != nil {
		return nil, err
	}

	return mmu, nil
}

func (b Builder) createPageTable(mmu *Comp) error {
	if b.pageTable == nil {
		mmu.pageTable = vm.NewPageTable(
			mmu.splitter.NumPages(), int(mmu.splitter.NumFrames()))
		return nil
	}

	if b.pageTable.NumPages() != mmu.splitter.NumPages() {
		return fmt.Errorf(
			"%w: page table has %d entries, the layout has %d pages",
			vm.ErrInvalidConfiguration,
			b.pageTable.NumPages(), mmu.splitter.NumPages())
	}

	for frame := 0; frame < int(mmu.splitter.NumFrames()); frame++ {
		page, found := b.pageTable.PageOf(frame)
		if found {
			return fmt.Errorf(
				"%w: page table maps page %d to frame %d before any access",
				vm.ErrInvalidConfiguration, page, frame)
		}
	}

	mmu.pageTable = b.pageTable

	return nil
}

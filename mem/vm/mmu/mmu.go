package mmu

import (
	"fmt"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/mem/vm"
)

// Comp is the demand-paging MMU. Pages are brought into frames when they are
// first accessed, and the least recently used frame is reused when the
// physical memory is full.
type Comp struct {
	hooking.HookableBase

	name      string
	splitter  vm.AddressSplitter
	pageTable vm.PageTable
	frames    *vm.FrameAllocator
	lru       *vm.LRUTracker

	clock uint64
	stats Stats
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// AddressSplitter returns the address layout used by the MMU.
func (c *Comp) AddressSplitter() vm.AddressSplitter {
	return c.splitter
}

// PageTable returns the page table maintained by the MMU.
func (c *Comp) PageTable() vm.PageTable {
	return c.pageTable
}

// Clock returns the number of addresses translated so far.
func (c *Comp) Clock() uint64 {
	return c.clock
}

// Stats returns the counters of the translations so far.
func (c *Comp) Stats() Stats {
	return c.stats
}

// NumFaults returns the number of page faults so far.
func (c *Comp) NumFaults() uint64 {
	return c.stats.Faults
}

// LastUsed returns the time a frame was last accessed.
func (c *Comp) LastUsed(frame int) (uint64, bool) {
	return c.lru.LastUsed(frame)
}

// Run translates every address from the source into the sink.
func (c *Comp) Run(src AddressSource, sink AddressSink) (Stats, error) {
	err := run(c, src, sink)
	return c.stats, err
}

// Translate converts a logical address to a physical address, loading the
// page into a frame if it is not resident.
func (c *Comp) Translate(la uint64) (uint64, error) {
	page, offset, err := c.splitter.Split(la)
	if err != nil {
		return 0, err
	}

	entry, err := c.pageTable.Lookup(page)
	if err != nil {
		return 0, err
	}

	frame := entry.Frame
	fault := !entry.Valid

	if fault {
		frame, err = c.handlePageFault(page)
		if err != nil {
			return 0, err
		}
	} else {
		c.stats.Hits++
	}

	c.clock++
	c.lru.Touch(frame, c.clock)
	c.stats.Accesses++

	pa := c.splitter.Join(frame, offset)

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosTranslate,
		Item: Translation{
			Seq:          c.clock,
			LogicalAddr:  la,
			Page:         page,
			Offset:       offset,
			Frame:        frame,
			PhysicalAddr: pa,
			Fault:        fault,
		},
	})

	return pa, nil
}

func (c *Comp) handlePageFault(page uint64) (int, error) {
	c.stats.Faults++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosPageFault,
		Item:   page,
	})

	frame, found := c.frames.AllocateFree()
	if !found {
		var err error

		frame, err = c.evict()
		if err != nil {
			return 0, err
		}
	}

	err := c.pageTable.Map(page, frame)
	if err != nil {
		return 0, err
	}

	return frame, nil
}

// evict takes the least recently used frame away from its page. The frame is
// handed to the new page directly and never goes back to the allocator.
func (c *Comp) evict() (int, error) {
	victim, err := c.lru.SelectVictim()
	if err != nil {
		return 0, err
	}

	victimPage, found := c.pageTable.PageOf(victim)
	if !found {
		return victim, nil
	}

	err = c.pageTable.Invalidate(victimPage)
	if err != nil {
		return 0, err
	}

	c.stats.Evictions++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosEvict,
		Item: Eviction{
			Seq:   c.clock + 1,
			Frame: victim,
			Page:  victimPage,
		},
	})

	return victim, nil
}

// Unmap removes a page from its frame and returns the frame to the free
// pool. Unmapping a page that is not resident does nothing.
func (c *Comp) Unmap(page uint64) error {
	entry, err := c.pageTable.Lookup(page)
	if err != nil {
		return err
	}

	if !entry.Valid {
		return nil
	}

	err = c.pageTable.Invalidate(page)
	if err != nil {
		return err
	}

	err = c.frames.Release(entry.Frame)
	if err != nil {
		return fmt.Errorf("unmap page %d: %w", page, err)
	}

	c.lru.Forget(entry.Frame)

	return nil
}

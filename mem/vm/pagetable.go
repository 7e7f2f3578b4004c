package vm

import "fmt"

// NoFrame is the frame number of an entry that is not mapped.
const NoFrame = -1

// A PageTableEntry tells if a page is resident and which frame holds it.
type PageTableEntry struct {
	Valid bool
	Frame int
}

// A PageTable maps page numbers to frames. It also remembers which page owns
// each frame, so that the owner can be found when the frame is reused.
type PageTable interface {
	// Lookup returns the entry of a page.
	Lookup(page uint64) (PageTableEntry, error)

	// Map makes a page resident in a frame.
	Map(page uint64, frame int) error

	// Invalidate marks a page as not resident.
	Invalidate(page uint64) error

	// PageOf returns the page that currently owns a frame. The bool return
	// value is false if the frame holds no page.
	PageOf(frame int) (uint64, bool)

	// NumPages returns the number of entries in the table.
	NumPages() uint64
}

// NewPageTable creates a PageTable where every page is invalid.
func NewPageTable(numPages uint64, numFrames int) PageTable {
	pt := &pageTableImpl{
		entries: make([]PageTableEntry, numPages),
		owners:  make([]int64, numFrames),
	}

	for i := range pt.entries {
		pt.entries[i].Frame = NoFrame
	}

	for i := range pt.owners {
		pt.owners[i] = noOwner
	}

	return pt
}

const noOwner = -1

// pageTableImpl is the default implementation of a PageTable. It is backed by
// a slice indexed by page number and a reverse slice indexed by frame number.
type pageTableImpl struct {
	entries []PageTableEntry
	owners  []int64
}

func (pt *pageTableImpl) NumPages() uint64 {
	return uint64(len(pt.entries))
}

func (pt *pageTableImpl) Lookup(page uint64) (PageTableEntry, error) {
	if err := pt.pageMustBeInRange(page); err != nil {
		return PageTableEntry{Frame: NoFrame}, err
	}

	return pt.entries[page], nil
}

func (pt *pageTableImpl) Map(page uint64, frame int) error {
	if err := pt.pageMustBeInRange(page); err != nil {
		return err
	}

	if frame < 0 || frame >= len(pt.owners) {
		return fmt.Errorf("frame %d out of range [0, %d)", frame, len(pt.owners))
	}

	pt.frameMustNotBelongToOtherPage(page, frame)

	old := pt.entries[page]
	if old.Valid && old.Frame != frame {
		pt.owners[old.Frame] = noOwner
	}

	pt.entries[page] = PageTableEntry{Valid: true, Frame: frame}
	pt.owners[frame] = int64(page)

	return nil
}

func (pt *pageTableImpl) Invalidate(page uint64) error {
	if err := pt.pageMustBeInRange(page); err != nil {
		return err
	}

	entry := pt.entries[page]
	if entry.Valid {
		pt.owners[entry.Frame] = noOwner
	}

	pt.entries[page] = PageTableEntry{Valid: false, Frame: NoFrame}

	return nil
}

func (pt *pageTableImpl) PageOf(frame int) (uint64, bool) {
	if frame < 0 || frame >= len(pt.owners) {
		return 0, false
	}

	owner := pt.owners[frame]
	if owner == noOwner {
		return 0, false
	}

	return uint64(owner), true
}

func (pt *pageTableImpl) pageMustBeInRange(page uint64) error {
	if page >= uint64(len(pt.entries)) {
		return fmt.Errorf("%w: page %d, only %d pages",
			ErrInvalidPageNumber, page, len(pt.entries))
	}

	return nil
}

func (pt *pageTableImpl) frameMustNotBelongToOtherPage(page uint64, frame int) {
	owner := pt.owners[frame]
	if owner != noOwner && uint64(owner) != page {
		panic(fmt.Sprintf("frame %d already holds page %d", frame, owner))
	}
}

package vm

import "errors"

var (
	// ErrInvalidConfiguration is returned when the memory sizes cannot
	// describe a paging layout.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidPageNumber is returned when an address decodes to a page that
	// the page table does not cover.
	ErrInvalidPageNumber = errors.New("invalid page number")

	// ErrAllocationFailure is returned when the paging structures cannot be
	// sized from the configuration.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrNoEvictableFrame is returned when a page fault needs a victim but no
	// frame other than the reserved one exists.
	ErrNoEvictableFrame = errors.New("no evictable frame")
)

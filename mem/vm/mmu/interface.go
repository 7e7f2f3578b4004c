package mmu

import (
	"errors"

	"github.com/sarchlab/pagesim/hooking"
)

// ErrWriteFailure is returned when the sink rejects a physical address.
var ErrWriteFailure = errors.New("write failure")

// An AddressSource provides logical addresses in order. It returns io.EOF
// when no more address is available.
type AddressSource interface {
	ReadAddress() (uint64, error)
}

// An AddressSink accepts physical addresses in order.
type AddressSink interface {
	WriteAddress(addr uint64) error
}

// A Translator converts logical addresses to physical addresses.
type Translator interface {
	hooking.Hookable

	// Translate converts one logical address.
	Translate(la uint64) (uint64, error)

	// Run translates every address from the source into the sink. It stops
	// at the end of the source or at the first error.
	Run(src AddressSource, sink AddressSink) (Stats, error)

	// Stats returns the counters of the translations so far.
	Stats() Stats
}

// Stats counts what happened during the translations.
type Stats struct {
	Accesses  uint64
	Hits      uint64
	Faults    uint64
	Evictions uint64
}

// A Translation describes how one logical address was translated. It is the
// item of the HookPosTranslate hooks.
type Translation struct {
	Seq          uint64
	LogicalAddr  uint64
	Page         uint64
	Offset       uint64
	Frame        int
	PhysicalAddr uint64
	Fault        bool
}

// An Eviction describes a page that lost its frame. It is the item of the
// HookPosEvict hooks.
type Eviction struct {
	Seq   uint64
	Frame int
	Page  uint64
}

// HookPosTranslate marks that an address is translated.
var HookPosTranslate = &hooking.HookPos{Name: "Translate"}

// HookPosPageFault marks that a page is not resident when accessed.
var HookPosPageFault = &hooking.HookPos{Name: "PageFault"}

// HookPosEvict marks that a page is evicted from its frame.
var HookPosEvict = &hooking.HookPos{Name: "Evict"}

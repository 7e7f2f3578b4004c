// Package trace provides hooks that trace the address translations.
package trace

import (
	"log"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/mem/vm/mmu"
)

// translationEntry represents a translated address in the database
type translationEntry struct {
	Seq          uint64
	LogicalAddr  uint64
	Page         uint64
	Offset       uint64
	Frame        int
	PhysicalAddr uint64
	Fault        bool
}

// evictionEntry represents a page evicted from its frame in the database
type evictionEntry struct {
	Seq   uint64
	Frame int
	Page  uint64
}

// RunSummary describes a whole translation run in the database.
type RunSummary struct {
	ID                 string
	Mode               string
	BytesPerPage       uint64
	VirtualMemorySize  uint64
	PhysicalMemorySize uint64
	Accesses           uint64
	Hits               uint64
	Faults             uint64
	Evictions          uint64
	Failed             bool

	// MemoryRSS is the resident set size of the process, in bytes, at the
	// end of the run. It is 0 if the process cannot be inspected.
	MemoryRSS uint64
}

const (
	translationTable = "translations"
	evictionTable    = "evictions"
	runTable         = "runs"
)

// A LogTracer is a hook that prints the translations, the page faults, and the
// evictions it is invoked with. Register it with AcceptHookAt to print only
// some of them.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a LogTracer that prints "LA = <hex>   PA = <hex>"
// lines.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Func prints the translation, the fault, or the eviction.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case mmu.HookPosTranslate:
		tr := ctx.Item.(mmu.Translation)
		t.logger.Printf("LA = %x   PA = %x\n", tr.LogicalAddr, tr.PhysicalAddr)
	case mmu.HookPosPageFault:
		t.logger.Printf("page fault, page %d\n", ctx.Item.(uint64))
	case mmu.HookPosEvict:
		e := ctx.Item.(mmu.Eviction)
		t.logger.Printf("evict page %d from frame %d\n", e.Page, e.Frame)
	}
}

// A DBTracer is a hook that records the translations and the evictions into
// a database using the data recorder. It ignores the page faults, which are
// recorded as translations with Fault set.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(translationTable, translationEntry{})
	t.dataRecorder.CreateTable(evictionTable, evictionEntry{})
	t.dataRecorder.CreateTable(runTable, RunSummary{})

	return t
}

// Func records the translation or the eviction.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case mmu.HookPosTranslate:
		tr := ctx.Item.(mmu.Translation)
		t.dataRecorder.InsertData(translationTable, translationEntry{
			Seq:          tr.Seq,
			LogicalAddr:  tr.LogicalAddr,
			Page:         tr.Page,
			Offset:       tr.Offset,
			Frame:        tr.Frame,
			PhysicalAddr: tr.PhysicalAddr,
			Fault:        tr.Fault,
		})
	case mmu.HookPosEvict:
		e := ctx.Item.(mmu.Eviction)
		t.dataRecorder.InsertData(evictionTable, evictionEntry{
			Seq:   e.Seq,
			Frame: e.Frame,
			Page:  e.Page,
		})
	}
}

// RecordSummary records the outcome of a run.
func (t *DBTracer) RecordSummary(summary RunSummary) {
	t.dataRecorder.InsertData(runTable, summary)
}

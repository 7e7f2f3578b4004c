package trace

import (
	"context"
	"fmt"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/vm/mmu"
)

// A RecordReader reads back what a DBTracer recorded.
type RecordReader struct {
	reader datarecording.DataReader
}

// NewRecordReader maps the tables of a DBTracer on the reader.
func NewRecordReader(reader datarecording.DataReader) *RecordReader {
	reader.MapTable(translationTable, translationEntry{})
	reader.MapTable(evictionTable, evictionEntry{})
	reader.MapTable(runTable, RunSummary{})

	return &RecordReader{reader: reader}
}

// Tables returns the names of the tables in the database.
func (r *RecordReader) Tables(ctx context.Context) ([]string, error) {
	return r.reader.ListTables(ctx)
}

// Runs returns the summaries of the recorded runs.
func (r *RecordReader) Runs(ctx context.Context) ([]RunSummary, error) {
	results, _, err := r.reader.Query(ctx, runTable, datarecording.QueryParams{})
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}

	runs := make([]RunSummary, 0, len(results))
	for _, res := range results {
		runs = append(runs, *res.(*RunSummary))
	}

	return runs, nil
}

// Evictions returns the first evictions in the order they happened. A limit
// of 0 returns all of them. The total number of evictions is also returned.
func (r *RecordReader) Evictions(
	ctx context.Context,
	limit int,
) ([]mmu.Eviction, int, error) {
	results, total, err := r.reader.Query(ctx, evictionTable,
		datarecording.QueryParams{
			OrderBy: "Seq",
			Limit:   limit,
		})
	if err != nil {
		return nil, 0, fmt.Errorf("read evictions: %w", err)
	}

	evictions := make([]mmu.Eviction, 0, len(results))
	for _, res := range results {
		e := res.(*evictionEntry)
		evictions = append(evictions, mmu.Eviction{
			Seq:   e.Seq,
			Frame: e.Frame,
			Page:  e.Page,
		})
	}

	return evictions, total, nil
}

// PageFaults returns the first translations that faulted, in order. A limit
// of 0 returns all of them. The total number of faults is also returned.
func (r *RecordReader) PageFaults(
	ctx context.Context,
	limit int,
) ([]mmu.Translation, int, error) {
	results, total, err := r.reader.Query(ctx, translationTable,
		datarecording.QueryParams{
			Where:   "Fault = ?",
			Args:    []any{true},
			OrderBy: "Seq",
			Limit:   limit,
		})
	if err != nil {
		return nil, 0, fmt.Errorf("read page faults: %w", err)
	}

	faults := make([]mmu.Translation, 0, len(results))
	for _, res := range results {
		e := res.(*translationEntry)
		faults = append(faults, mmu.Translation{
			Seq:          e.Seq,
			LogicalAddr:  e.LogicalAddr,
			Page:         e.Page,
			Offset:       e.Offset,
			Frame:        e.Frame,
			PhysicalAddr: e.PhysicalAddr,
			Fault:        e.Fault,
		})
	}

	return faults, total, nil
}

package cmd

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/addressio"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/mmu"
	"github.com/shirou/gopsutil/process"
	"github.com/spf13/cobra"
)

// ErrSourceUnavailable is returned when the input file cannot be opened.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrSinkUnavailable is returned when the output file cannot be created.
var ErrSinkUnavailable = errors.New("sink unavailable")

// A runSetup describes one translation run of a command.
type runSetup struct {
	mode       string
	translator mmu.Translator
	config     vm.Config
	inPath     string
	outPath    string

	// reportFaults prints the page fault count at the end of the run.
	reportFaults bool
}

func (o *rootOptions) runTranslation(cmd *cobra.Command, s runSetup) error {
	format, err := o.format()
	if err != nil {
		return err
	}

	runID := xid.New().String()
	logger := o.logger.With("run", runID, "mode", s.mode)

	in, err := os.Open(s.inPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer in.Close()

	out, err := os.Create(s.outPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	defer out.Close()

	reader, err := addressio.NewReader(in, format)
	if err != nil {
		return err
	}

	writer, err := addressio.NewWriter(out, format)
	if err != nil {
		return err
	}

	if o.verbose {
		tracer := trace.NewLogTracer(log.New(cmd.OutOrStdout(), "", 0))
		if o.showFaults {
			s.translator.AcceptHook(tracer)
		} else {
			s.translator.AcceptHookAt(tracer, mmu.HookPosTranslate)
		}
	}

	var (
		recorder datarecording.DataRecorder
		dbTracer *trace.DBTracer
	)

	if o.record != "" {
		recorder, err = datarecording.New(o.record)
		if err != nil {
			return fmt.Errorf("create recorder: %w", err)
		}
		defer recorder.Close()

		dbTracer = trace.NewDBTracer(recorder)
		s.translator.AcceptHookAt(dbTracer,
			mmu.HookPosTranslate, mmu.HookPosEvict)
	}

	logger.Info("translation started",
		"input", s.inPath,
		"output", s.outPath,
		"word_size", format.WordSize)

	stats, runErr := s.translator.Run(reader, writer)

	flushErr := writer.Flush()
	if runErr == nil && flushErr != nil {
		runErr = fmt.Errorf("%w: %w", mmu.ErrWriteFailure, flushErr)
	}

	rss := memoryUsage(logger)

	if dbTracer != nil {
		dbTracer.RecordSummary(trace.RunSummary{
			ID:                 runID,
			Mode:               s.mode,
			BytesPerPage:       s.config.BytesPerPage,
			VirtualMemorySize:  s.config.VirtualMemorySize,
			PhysicalMemorySize: s.config.PhysicalMemorySize,
			Accesses:           stats.Accesses,
			Hits:               stats.Hits,
			Faults:             stats.Faults,
			Evictions:          stats.Evictions,
			Failed:             runErr != nil,
			MemoryRSS:          rss,
		})
	}

	if s.reportFaults {
		fmt.Fprintf(cmd.ErrOrStderr(), "page faults: %d\n", stats.Faults)
	}

	logger.Info("translation finished",
		"accesses", stats.Accesses,
		"hits", stats.Hits,
		"faults", stats.Faults,
		"evictions", stats.Evictions)

	return runErr
}

// memoryUsage returns the resident set size of the process.
func memoryUsage(logger *slog.Logger) uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Debug("cannot inspect process", "error", err)
		return 0
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		logger.Debug("cannot read memory usage", "error", err)
		return 0
	}

	logger.Debug("memory usage", "rss_bytes", mem.RSS, "vms_bytes", mem.VMS)

	return mem.RSS
}

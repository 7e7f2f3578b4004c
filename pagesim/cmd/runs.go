package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var (
		showEvictions  bool
		showPageFaults bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "runs DB",
		Short: "Print the runs recorded in a database created with --record.",
		Long: `Print the tables and the run summaries of a recording database ` +
			`(the .sqlite3 file). The evictions and the page faults can be ` +
			`listed too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}

			dataReader, err := datarecording.NewReader(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}
			defer dataReader.Close()

			p := recordPrinter{
				reader: trace.NewRecordReader(dataReader),
				out:    cmd.OutOrStdout(),
				limit:  limit,
			}

			err = p.printRuns(cmd)
			if err != nil {
				return err
			}

			if showEvictions {
				err = p.printEvictions(cmd)
				if err != nil {
					return err
				}
			}

			if showPageFaults {
				return p.printPageFaults(cmd)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showEvictions, "evictions", false,
		"list the evictions")
	cmd.Flags().BoolVar(&showPageFaults, "page-faults", false,
		"list the translations that faulted")
	cmd.Flags().IntVar(&limit, "limit", 0,
		"maximum number of evictions or page faults to list, 0 for all")

	return cmd
}

type recordPrinter struct {
	reader *trace.RecordReader
	out    io.Writer
	limit  int
}

func (p recordPrinter) printRuns(cmd *cobra.Command) error {
	tables, err := p.reader.Tables(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "tables: %s\n", strings.Join(tables, ", "))

	runs, err := p.reader.Runs(cmd.Context())
	if err != nil {
		return err
	}

	for _, r := range runs {
		fmt.Fprintf(p.out,
			"run %s mode=%s page=%d vm=%d pm=%d "+
				"accesses=%d hits=%d faults=%d evictions=%d "+
				"failed=%t rss=%d\n",
			r.ID, r.Mode,
			r.BytesPerPage, r.VirtualMemorySize, r.PhysicalMemorySize,
			r.Accesses, r.Hits, r.Faults, r.Evictions,
			r.Failed, r.MemoryRSS)
	}

	return nil
}

func (p recordPrinter) printEvictions(cmd *cobra.Command) error {
	evictions, total, err := p.reader.Evictions(cmd.Context(), p.limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "evictions: %d\n", total)

	for _, e := range evictions {
		fmt.Fprintf(p.out, "evict seq=%d page=%d frame=%d\n",
			e.Seq, e.Page, e.Frame)
	}

	return nil
}

func (p recordPrinter) printPageFaults(cmd *cobra.Command) error {
	faults, total, err := p.reader.PageFaults(cmd.Context(), p.limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "page faults: %d\n", total)

	for _, f := range faults {
		fmt.Fprintf(p.out, "fault seq=%d page=%d frame=%d LA = %x   PA = %x\n",
			f.Seq, f.Page, f.Frame, f.LogicalAddr, f.PhysicalAddr)
	}

	return nil
}

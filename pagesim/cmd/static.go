package cmd

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/mmu"
	"github.com/spf13/cobra"
)

func newStaticCmd(opts *rootOptions) *cobra.Command {
	var (
		table    []int
		pageSize uint64
	)

	cmd := &cobra.Command{
		Use:   "static IN OUT",
		Short: "Translate addresses with a fixed page table.",
		Long: `Translate the logical addresses in IN with a page table that ` +
			`never changes. A negative frame marks a page that is not ` +
			`mapped; accessing it stops the translation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize == 0 || bits.OnesCount64(pageSize) != 1 {
				return fmt.Errorf("%w: page size %d is not a power of two",
					vm.ErrInvalidConfiguration, pageSize)
			}

			translator, err := mmu.MakeStaticBuilder().
				WithTable(normalizeTable(table)).
				WithLog2PageSize(uint64(bits.TrailingZeros64(pageSize))).
				Build("StaticMMU")
			if err != nil {
				return err
			}

			return opts.runTranslation(cmd, runSetup{
				mode:       "static",
				translator: translator,
				config: vm.Config{
					BytesPerPage:       pageSize,
					VirtualMemorySize:  pageSize * uint64(len(table)),
					PhysicalMemorySize: pageSize * uint64(maxFrame(table)+1),
				},
				inPath:  args[0],
				outPath: args[1],
			})
		},
	}

	cmd.Flags().IntSliceVar(&table, "table", mmu.DefaultStaticTable,
		"frame of each page, negative for unmapped pages")
	cmd.Flags().Uint64Var(&pageSize, "page-size", 128,
		"number of bytes in a page")

	return cmd
}

func normalizeTable(table []int) []int {
	normalized := make([]int, len(table))

	for i, frame := range table {
		if frame < 0 {
			frame = vm.NoFrame
		}

		normalized[i] = frame
	}

	return normalized
}

func maxFrame(table []int) int {
	m := 0
	for _, frame := range table {
		m = max(m, frame)
	}

	return m
}

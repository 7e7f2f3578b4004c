package cmd

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/mmu"
	"github.com/spf13/cobra"
)

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate BytesPerPage VirtualMemorySize PhysicalMemorySize IN OUT",
		Short: "Translate addresses with demand paging and LRU replacement.",
		Long: `Translate the logical addresses in IN into physical addresses ` +
			`written to OUT. The page table and the frames are sized from ` +
			`the three memory sizes, which must be powers of two. Frame 0 ` +
			`is reserved.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := parseConfig(args[:3])
			if err != nil {
				return err
			}

			return runPaging(cmd, opts, "translate", config, args[3], args[4])
		},
	}
}

func newLRUCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lru IN OUT",
		Short: "Translate addresses with 128-byte pages, 32 pages, and 8 frames.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaging(cmd, opts, "lru", vm.LRUPresetConfig,
				args[0], args[1])
		},
	}
}

func runPaging(
	cmd *cobra.Command,
	opts *rootOptions,
	mode string,
	config vm.Config,
	inPath, outPath string,
) error {
	translator, err := mmu.MakeBuilder().
		WithConfig(config).
		Build("MMU")
	if err != nil {
		return err
	}

	return opts.runTranslation(cmd, runSetup{
		mode:         mode,
		translator:   translator,
		config:       config,
		inPath:       inPath,
		outPath:      outPath,
		reportFaults: true,
	})
}

func parseConfig(args []string) (vm.Config, error) {
	names := []string{
		"bytes per page",
		"virtual memory size",
		"physical memory size",
	}

	values := make([]uint64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return vm.Config{}, fmt.Errorf("%w: %s %q is not a number",
				vm.ErrInvalidConfiguration, names[i], arg)
		}

		values[i] = v
	}

	return vm.Config{
		BytesPerPage:       values[0],
		VirtualMemorySize:  values[1],
		PhysicalMemorySize: values[2],
	}, nil
}

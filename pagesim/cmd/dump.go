package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/pagesim/mem/addressio"
	"github.com/spf13/cobra"
)

func newDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the addresses stored in a binary address file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}
			defer f.Close()

			reader, err := addressio.NewReader(f, format)
			if err != nil {
				return err
			}

			addrs, err := reader.ReadAll()
			for i, addr := range addrs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t0x%x\n", i, addr)
			}

			return err
		},
	}
}

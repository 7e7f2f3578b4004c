// Package cmd provides the command-line interface for pagesim.
package cmd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/pagesim/mem/addressio"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootOptions holds the flags shared by all the commands.
type rootOptions struct {
	wordSize   int
	bigEndian  bool
	verbose    bool
	showFaults bool
	record     string
	logLevel   string
	envFile    string

	logger *slog.Logger
}

// envFlags lists the flags that can be set from the environment when they are
// not given on the command line.
var envFlags = map[string]string{
	"word-size":  "PAGESIM_WORD_SIZE",
	"big-endian": "PAGESIM_BIG_ENDIAN",
	"record":     "PAGESIM_RECORD",
	"log-level":  "PAGESIM_LOG_LEVEL",
}

// NewRootCmd creates the pagesim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pagesim",
		Short: "pagesim translates logical addresses to physical addresses.",
		Long: `pagesim translates a file of logical addresses into a file of ` +
			`physical addresses. It can use a fixed page table (static) or ` +
			`demand paging with LRU replacement (lru, translate).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&opts.wordSize, "word-size", 8,
		"number of bytes of each address record (4 or 8)")
	flags.BoolVar(&opts.bigEndian, "big-endian", false,
		"address records are big-endian")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"print every translation")
	flags.BoolVar(&opts.showFaults, "faults", false,
		"with --verbose, also print page faults and evictions")
	flags.StringVar(&opts.record, "record", "",
		"record the translations into an SQLite database (path without extension)")
	flags.StringVar(&opts.logLevel, "log-level", "warn",
		"log level (debug, info, warn, error)")
	flags.StringVar(&opts.envFile, "env-file", "",
		"file to load PAGESIM_* settings from (default .env if present)")

	rootCmd.AddCommand(
		newTranslateCmd(opts),
		newLRUCmd(opts),
		newStaticCmd(opts),
		newDumpCmd(opts),
		newRunsCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	err := o.loadEnv(cmd)
	if err != nil {
		return err
	}

	o.logger = newLogger(cmd, o.logLevel)

	return nil
}

func (o *rootOptions) loadEnv(cmd *cobra.Command) error {
	if o.envFile != "" {
		err := godotenv.Load(o.envFile)
		if err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	for flag, env := range envFlags {
		value, found := os.LookupEnv(env)
		if !found || cmd.Flags().Changed(flag) {
			continue
		}

		err := cmd.Flags().Set(flag, value)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}

	return nil
}

func (o *rootOptions) format() (addressio.Format, error) {
	format := addressio.Format{
		WordSize:  o.wordSize,
		ByteOrder: binary.LittleEndian,
	}

	if o.bigEndian {
		format.ByteOrder = binary.BigEndian
	}

	return format, format.Validate()
}

func newLogger(cmd *cobra.Command, logLevel string) *slog.Logger {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

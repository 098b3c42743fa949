// Package cmd provides the command-line interface for pagesim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use: "pagesim",
		Short: "pagesim replays memory traces against page replacement " +
			"policies.",
		Long: `pagesim replays memory traces against page replacement ` +
			`policies (OPT, FIFO, CLOCK, LRU, RANDOM) over a fixed number ` +
			`of frames and reports misses, disk writes and clean drops.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvDefaults(cmd.Flags(), opts.envFile)
		},
	}

	opts.registerPersistentFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newCompareCmd(opts))
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute runs the command line and exits the process. Handlers registered
// with atexit, such as recorder flushes, run before exiting.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

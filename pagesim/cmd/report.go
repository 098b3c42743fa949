package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
)

func newReportCmd() *cobra.Command {
	var (
		evictionsOf string
		info        bool
	)

	reportCmd := &cobra.Command{
		Use:   "report <recording.sqlite3>",
		Short: "Print the simulations stored in a recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			if info {
				entries, err := datarecording.ReadExecInfo(cmd.Context(), reader)
				if err != nil {
					return err
				}

				for _, e := range entries {
					fmt.Fprintf(w, "%s:\t%s\n", e.Property, e.Value)
				}

				return w.Flush()
			}

			if evictionsOf != "" {
				evictions, err := trace.ReadEvictions(
					cmd.Context(), reader, evictionsOf)
				if err != nil {
					return err
				}

				fmt.Fprintln(w, "TIME\tFRAME\tREAD\tEVICTED\tDIRTY")
				for _, e := range evictions {
					fmt.Fprintf(w, "%d\t%d\t0x%05x\t0x%05x\t%t\n",
						e.Time, e.Frame, e.IncomingPage, e.EvictedPage,
						e.WasDirty)
				}

				return w.Flush()
			}

			summaries, err := trace.ReadSummaries(cmd.Context(), reader)
			if err != nil {
				return err
			}

			fmt.Fprintln(w, "SIMULATION\tFRAMES\tACCESSES\tMISSES\t"+
				"MISS RATE\tEVICTIONS\tWRITES\tDROPS")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f%%\t%d\t%d\t%d\n",
					s.Simulation, s.NumFrames, s.Accesses, s.Misses,
					s.MissRate*100, s.Evictions, s.WritesToDisk, s.CleanDrops)
			}

			return w.Flush()
		},
	}

	reportCmd.Flags().StringVar(&evictionsOf, "evictions", "",
		"List the evictions of the named simulation instead")
	reportCmd.Flags().BoolVar(&info, "info", false,
		"Show how the recording was produced instead")

	return reportCmd
}

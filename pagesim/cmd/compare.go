package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/mem/vm/paging"
)

func newCompareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <trace> <num-frames>",
		Short: "Replay a trace with every replacement policy.",
		Long: `Replay the same trace with every replacement policy, using ` +
			`the same number of frames and seed, and print one row per ` +
			`policy.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			numFrames, err := parseNumFrames(args[1])
			if err != nil {
				return err
			}

			s, err := newSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()

			return s.compare(args[0], numFrames)
		},
	}
}

func (s *session) compare(path string, numFrames int) error {
	s.note("Trace", path)
	s.note("Frames", strconv.Itoa(numFrames))

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w,
		"POLICY\tACCESSES\tMISSES\tMISS RATE\tEVICTIONS\tWRITES\tDROPS")

	for _, policy := range paging.Policies() {
		simulation, err := s.newSimulation(numFrames, policy, false)
		if err != nil {
			return err
		}

		c, err := s.replay(simulation, path)
		if errors.Is(err, paging.ErrPolicyNotImplemented) {
			fmt.Fprintf(w, "%s\tnot implemented\t\t\t\t\t\n", policy)
			continue
		}

		if err != nil {
			return fmt.Errorf("%s: %w", policy, err)
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f%%\t%d\t%d\t%d\n",
			policy, c.Accesses, c.Misses, c.MissRate()*100,
			c.Evictions, c.WritesToDisk, c.CleanDrops)
	}

	return w.Flush()
}

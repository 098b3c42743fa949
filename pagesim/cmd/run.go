package cmd

import (
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/paging"
)

func newRunCmd(opts *options) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <trace> <num-frames> <policy>",
		Short: "Replay a trace with one replacement policy.",
		Long: `Replay a trace with one replacement policy and print the ` +
			`number of accesses, misses, disk writes and clean drops. ` +
			`With --verbose, every eviction is printed as it happens.`,
		Example: "  pagesim run traces/gcc.trace 64 lru -v",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			numFrames, err := parseNumFrames(args[1])
			if err != nil {
				return err
			}

			policy, err := paging.ParsePolicy(args[2])
			if err != nil {
				return err
			}

			s, err := newSession(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()

			return s.runOne(args[0], numFrames, policy)
		},
	}

	runCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Print every eviction")

	return runCmd
}

func (s *session) runOne(
	path string,
	numFrames int,
	policy paging.Policy,
) error {
	s.note("Trace", path)
	s.note("Frames", strconv.Itoa(numFrames))
	s.note("Policy", policy.String())

	simulation, err := s.newSimulation(numFrames, policy, s.opts.verbose)
	if err != nil {
		return err
	}

	logger := log.New(s.out, "", 0)
	if s.opts.verbose {
		simulation.AcceptHook(trace.NewTracer(logger))
	} else {
		simulation.AcceptHook(trace.NewSummaryTracer(logger))
	}

	_, err = s.replay(simulation, path)

	return err
}

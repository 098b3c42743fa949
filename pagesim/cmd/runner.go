package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/paging"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/sim"
)

// A session holds what the simulations of one command share: the recorder,
// the monitor and the output.
type session struct {
	opts *options
	out  io.Writer

	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
	dbTracer sim.Hook
	monitor  *monitoring.Monitor
}

func newSession(opts *options, out io.Writer) (*session, error) {
	s := &session{
		opts: opts,
		out:  out,
	}

	if opts.record != "" {
		sim.UseGlobalIDGenerator()

		recorder, err := datarecording.New(opts.recordPath())
		if err != nil {
			return nil, err
		}

		s.recorder = recorder
		s.dbTracer = trace.NewDBTracer(recorder)
		s.exec = datarecording.NewExecRecorder(recorder)
		s.note("Seed", strconv.FormatInt(opts.seed, 10))
		s.note("Offset Bits", strconv.FormatUint(uint64(opts.offsetBits), 10))
		s.note("Address Bits", strconv.FormatUint(uint64(opts.addressBits), 10))
	}

	if opts.monitor {
		s.monitor = monitoring.NewMonitor().WithPortNumber(opts.monitorPort)

		url, err := s.monitor.StartServer()
		if err != nil {
			s.close()
			return nil, err
		}

		if opts.openBrowser {
			err = s.monitor.OpenInBrowser(url)
			if err != nil {
				log.Printf("cannot open browser: %v", err)
			}
		}
	}

	return s, nil
}

// newSimulation builds a simulation and attaches the session's hooks to it.
// Recording needs the eviction events, so it turns verbose on.
func (s *session) newSimulation(
	numFrames int,
	policy paging.Policy,
	verbose bool,
) (*paging.Simulation, error) {
	simulation, err := paging.MakeBuilder().
		WithNumFrames(numFrames).
		WithPolicy(policy).
		WithSeed(s.opts.seed).
		WithVerbose(verbose || s.recorder != nil).
		Build(policy.String())
	if err != nil {
		return nil, err
	}

	if s.dbTracer != nil {
		simulation.AcceptHook(s.dbTracer)
	}

	if s.monitor != nil {
		s.monitor.RegisterSimulation(simulation)
	}

	return simulation, nil
}

// replay runs the simulation over the trace file at path.
func (s *session) replay(
	simulation *paging.Simulation,
	path string,
) (paging.Counters, error) {
	f, err := os.Open(path)
	if err != nil {
		return paging.Counters{}, err
	}
	defer f.Close()

	var input io.Reader = f

	if s.monitor != nil {
		info, err := f.Stat()
		if err != nil {
			return paging.Counters{}, err
		}

		bar := s.monitor.CreateProgressBar(
			simulation.Name(), uint64(info.Size()))
		defer s.monitor.CompleteProgressBar(bar)

		input = io.TeeReader(f, bar)
	}

	reader, err := trace.MakeReaderBuilder().
		WithOffsetBits(s.opts.offsetBits).
		WithAddressBits(s.opts.addressBits).
		Build(input)
	if err != nil {
		return paging.Counters{}, err
	}

	return simulation.Run(reader)
}

// note adds a property to the execution record, if there is one.
func (s *session) note(property, value string) {
	if s.exec != nil {
		s.exec.Set(property, value)
	}
}

func (s *session) close() {
	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := s.monitor.StopServer(ctx)
		if err != nil {
			log.Printf("stopping monitor: %v", err)
		}
	}

	if s.recorder != nil {
		s.exec.End()

		err := s.recorder.Close()
		if err != nil {
			log.Printf("closing recorder: %v", err)
		}

		s.recorder = nil
	}
}

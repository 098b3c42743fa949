package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// maxFrames is the largest memory the command line accepts.
const maxFrames = 1000

// generatedRecordName is the value of a --record flag given without a path.
const generatedRecordName = "auto"

type options struct {
	envFile     string
	verbose     bool
	seed        int64
	offsetBits  uint
	addressBits uint
	record      string
	monitor     bool
	monitorPort int
	openBrowser bool
}

// envFlags maps environment variables to the flags they provide defaults for.
var envFlags = []struct {
	env  string
	flag string
}{
	{"PAGESIM_VERBOSE", "verbose"},
	{"PAGESIM_SEED", "seed"},
	{"PAGESIM_OFFSET_BITS", "offset-bits"},
	{"PAGESIM_ADDRESS_BITS", "address-bits"},
	{"PAGESIM_RECORD", "record"},
	{"PAGESIM_MONITOR", "monitor"},
	{"PAGESIM_MONITOR_PORT", "monitor-port"},
}

func (o *options) registerPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&o.envFile, "env-file", ".env",
		"File with PAGESIM_* variables that provide flag defaults")
	flags.Int64Var(&o.seed, "seed", 0,
		"Seed of the RANDOM policy")
	flags.UintVar(&o.offsetBits, "offset-bits", 12,
		"Number of address bits that select a byte within a page")
	flags.UintVar(&o.addressBits, "address-bits", 32,
		"Width of the virtual address space in bits")
	flags.StringVar(&o.record, "record", "",
		"Record evictions and summaries into <record>.sqlite3; "+
			"--record alone picks pagesim_recording_<id>.sqlite3")
	flags.Lookup("record").NoOptDefVal = generatedRecordName
	flags.BoolVar(&o.monitor, "monitor", false,
		"Serve live statistics over HTTP while simulating")
	flags.IntVar(&o.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, random if 0")
	flags.BoolVar(&o.openBrowser, "open-browser", false,
		"Open the monitoring server in a browser")
}

// loadEnvDefaults loads the env file, if it exists, into the environment and
// then sets every flag that was not given on the command line from its
// PAGESIM_* variable.
func loadEnvDefaults(flags *pflag.FlagSet, envFile string) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	for _, e := range envFlags {
		value, set := os.LookupEnv(e.env)
		if !set || flags.Lookup(e.flag) == nil || flags.Changed(e.flag) {
			continue
		}

		err := flags.Set(e.flag, value)
		if err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}

	return nil
}

// recordPath returns the path that datarecording.New should use. An empty
// path makes it generate one.
func (o *options) recordPath() string {
	if o.record == generatedRecordName {
		return ""
	}

	return o.record
}

func parseNumFrames(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number of frames %q", s)
	}

	if n < 0 || n > maxFrames {
		return 0, fmt.Errorf("invalid number of frames %d, want 0..%d",
			n, maxFrames)
	}

	return n, nil
}

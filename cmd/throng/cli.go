// Package main is the entry point for the throng load simulation CLI.
package main

import (
	"flag"
	"fmt"
	"os"
)

const version = "1.0.0"

// CLIFlags holds every command line flag throng accepts.
type CLIFlags struct {
	ConfigFile string

	ConcurrentUsers int
	Rate            float64
	DurationSeconds int
	RampUpSeconds   int
	Timeout         int

	OutputFormat string
	OutputFile   string

	QuietMode   bool
	VerboseMode bool

	ShowHelp    bool
	ShowVersion bool
}

func parseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "path to the YAML simulation definition")
	flag.StringVar(&flags.ConfigFile, "c", "", "path to the YAML simulation definition (shorthand)")

	flag.IntVar(&flags.ConcurrentUsers, "users", 0, "override the concurrent user count")
	flag.Float64Var(&flags.Rate, "rate", 0, "override the target rate in requests/sec")
	flag.IntVar(&flags.DurationSeconds, "duration", 0, "override the run duration in seconds")
	flag.IntVar(&flags.RampUpSeconds, "ramp-up", 0, "override the ramp-up time in seconds")
	flag.IntVar(&flags.Timeout, "timeout", 0, "override the per-request timeout in seconds")

	flag.StringVar(&flags.OutputFormat, "output", "", "output format: json, or empty for console")
	flag.StringVar(&flags.OutputFormat, "o", "", "output format (shorthand)")
	flag.StringVar(&flags.OutputFile, "output-file", "", "output file path (default: stdout)")

	flag.BoolVar(&flags.QuietMode, "quiet", false, "only show the final summary line")
	flag.BoolVar(&flags.QuietMode, "q", false, "only show the final summary line (shorthand)")
	flag.BoolVar(&flags.VerboseMode, "verbose", false, "log every failed step")
	flag.BoolVar(&flags.VerboseMode, "V", false, "log every failed step (shorthand)")

	flag.BoolVar(&flags.ShowHelp, "help", false, "display this help message")
	flag.BoolVar(&flags.ShowHelp, "h", false, "display this help message (shorthand)")
	flag.BoolVar(&flags.ShowVersion, "version", false, "display the version")
	flag.BoolVar(&flags.ShowVersion, "v", false, "display the version (shorthand)")

	flag.Parse()

	return flags
}

func validateFlags(flags *CLIFlags) error {
	if flags.VerboseMode && flags.QuietMode {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}
	if flags.ConfigFile == "" {
		return fmt.Errorf("--config is required")
	}
	return nil
}

func handleSpecialFlags(flags *CLIFlags) bool {
	if flags.ShowVersion {
		fmt.Printf("throng version %s\n", version)
		return true
	}
	if flags.ShowHelp {
		flag.Usage()
		return true
	}
	return false
}

func exitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

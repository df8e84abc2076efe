// Package main is the entry point for the throng load simulation CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/throng/throng/pkg/config"
	"github.com/throng/throng/pkg/report"
	"github.com/throng/throng/pkg/sim"
)

func main() {
	flags := parseFlags()

	if handleSpecialFlags(flags) {
		return
	}
	if err := validateFlags(flags); err != nil {
		exitWithError("%v", err)
	}

	file, err := config.Load(flags.ConfigFile)
	if err != nil {
		exitWithError("%v", err)
	}

	simulation, opts, err := config.Build(file)
	if err != nil {
		exitWithError("%v", err)
	}
	applyOverrides(&opts, flags)
	if !flags.VerboseMode {
		opts.ErrorSink = discardErrorSink{}
	}

	quiet := flags.QuietMode || flags.OutputFormat == "json"

	if !quiet {
		printConfiguration(file, opts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel, quiet)

	summary := report.NewSummary(time.Now())
	var bar *report.Bar
	if !quiet {
		bar = report.NewBar(summary, false)
		opts.ProgressTracker = bar
	}

	results, _, err := sim.Run(ctx, simulation, opts)
	if err != nil {
		exitWithError("%v", err)
	}

	summary.Consume(ctx, results)
	if bar != nil {
		bar.Finish()
	}

	writeResults(summary, file.Name, flags)
}

// discardErrorSink drops step failures; runs without --verbose use it
// instead of the engine's logging sink.
type discardErrorSink struct{}

func (discardErrorSink) LogStepFailure(string, string, int, error) {}

func setupSignalHandler(cancel context.CancelFunc, quiet bool) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		if !quiet {
			fmt.Println("\nrun interrupted, shutting down...")
		}
		cancel()
	}()
}

func applyOverrides(opts *sim.Options, flags *CLIFlags) {
	if flags.ConcurrentUsers > 0 {
		opts.Concurrency = flags.ConcurrentUsers
		opts.Users = nil
	}
	if flags.Rate > 0 {
		opts.Rate = flags.Rate
	}
	if flags.DurationSeconds > 0 {
		opts.Duration = time.Duration(flags.DurationSeconds) * time.Second
		opts.RequestCount = 0
		opts.FixedRuns = 0
	}
	if flags.RampUpSeconds > 0 {
		opts.RampUp = time.Duration(flags.RampUpSeconds) * time.Second
	}
	if flags.Timeout > 0 {
		opts.Timeout = time.Duration(flags.Timeout) * time.Second
	}
}

func writeResults(summary *report.Summary, name string, flags *CLIFlags) {
	out := os.Stdout
	if flags.OutputFile != "" {
		f, err := os.Create(flags.OutputFile)
		if err != nil {
			exitWithError("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch flags.OutputFormat {
	case "json":
		if err := report.WriteJSON(out, name, summary); err != nil {
			exitWithError("%v", err)
		}
	default:
		if flags.QuietMode {
			report.WriteConsoleQuiet(out, summary)
		} else {
			report.WriteConsole(out, name, summary)
		}
	}
}

func printConfiguration(file *config.File, opts sim.Options) {
	if file.Name != "" {
		fmt.Printf("Simulation: %s\n", file.Name)
	}
	fmt.Printf("Scenarios: %d\n", len(file.Scenarios))
	if opts.Concurrency > 0 {
		fmt.Printf("Concurrent users: %d\n", opts.Concurrency)
	}
	if opts.Rate > 0 {
		fmt.Printf("Rate: %.1f req/s\n", opts.Rate)
	}
	if opts.Duration > 0 {
		fmt.Printf("Duration: %s\n", opts.Duration)
	}
	if opts.RampUp > 0 {
		fmt.Printf("Ramp-up: %s\n", opts.RampUp)
	}
	fmt.Println()
}

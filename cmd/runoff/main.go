// Command runoff counts an instant-runoff election from a CSV of
// ranked ballots and reports the winner.
//
// Usage:
//
//	runoff [flags] ballots.csv
//
// The CSV header names the candidates; each following row is one
// ballot, with a cell per candidate holding that voter's preference
// rank (lower is more preferred, blank for none).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/preflib/runoff/infrastructure/csvtable"
	"github.com/preflib/runoff/infrastructure/middleware"
	"github.com/preflib/runoff/infrastructure/report"
	"github.com/preflib/runoff/internal/application"
	"github.com/preflib/runoff/internal/engine"
)

// BSD sysexits codes, matching the conventions of tabulation tooling.
const (
	exitOK      = 0
	exitUsage   = 64
	exitDataErr = 65
)

// metrics registers once in the default Prometheus registry; run is
// re-entered by tests and must not re-register.
var metrics = middleware.NewPrometheusMetrics()

func main() { os.Exit(run(os.Args[1:], os.Stdout, os.Stderr)) }

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runoff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		threshold   = fs.Float64("threshold", 0.5, "Winning vote share, a fraction in (0, 1]")
		showReport  = fs.Bool("report", false, "Print the round-by-round counting report")
		tieBreak    = fs.String("tie-break", "", "Winning-tie policy: ballot_order or error")
		configPath  = fs.String("config", "", "Optional YAML config file; flags override it")
		parallelism = fs.Int("parallelism", 0, "Normalization goroutines, 0 for one per CPU")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: runoff [flags] <ballots.csv>")
		fs.PrintDefaults()
		return exitUsage
	}
	path := fs.Arg(0)

	config := application.DefaultCountConfig()
	if *configPath != "" {
		loaded, err := application.LoadCountConfig(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		config = loaded
	}

	// Explicit flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			config.Threshold = *threshold
		case "report":
			config.Report = *showReport
		case "tie-break":
			config.TieBreak = engine.TieBreak(*tieBreak)
		case "parallelism":
			config.MaxParallelism = *parallelism
		}
	})

	clampedFrom := 0.0
	if config.Threshold > 1 {
		clampedFrom = config.Threshold
		config.Threshold = 1
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	ctx := context.Background()
	table, err := csvtable.ReadFile(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr, "An error occurred reading the CSV data: %v\n", err)
		return exitDataErr
	}

	reporter := report.New(stdout, table.Candidates, config.Report)
	if clampedFrom != 0 {
		reporter.ThresholdClamped(clampedFrom, config.Threshold)
	}
	reporter.NearDuplicateNames(table.Candidates.NearDuplicates())

	ballots, invalid, err := engine.NormalizeTable(ctx, table, config.MaxParallelism)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitDataErr
	}
	metrics.RecordCounter("ballots_valid", float64(len(ballots)), nil)
	metrics.RecordCounter("ballots_invalid", float64(len(invalid)), nil)
	reporter.InvalidBallots(table, invalid)

	if len(ballots) == 0 {
		fmt.Fprintln(stderr, "no valid ballots in input")
		return exitDataErr
	}

	eng, err := engine.New(table.Candidates, config.EngineConfig(), engine.WithMetrics(metrics))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	outcome, rounds, err := eng.Count(ctx, ballots)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitDataErr
	}

	reporter.Rounds(rounds)
	reporter.Outcome(outcome)
	return exitOK
}

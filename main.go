package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"semerg/internal/config"
	"semerg/internal/coordinator"
	"semerg/internal/entsoe"
	"semerg/internal/fetcher"
	"semerg/internal/fingrid"
	"semerg/internal/logging"
	"semerg/internal/ratelimit"
	"semerg/internal/report"
	"semerg/internal/tariff"
	"semerg/internal/window"
)

var Version = "0.2"

// environment holds what a run takes from the process.
type environment struct {
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
	location *time.Location
}

func main() {
	// Cancel in-flight requests on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(runMain(ctx, os.Args[1:], environment{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
		location: time.Local,
	}))
}

func runMain(ctx context.Context, args []string, env environment) int {
	err := run(ctx, args, env)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(env.stderr, "semerg: %v\n", err)
	return exitCode(err)
}

func run(ctx context.Context, args []string, env environment) error {
	if len(args) == 0 {
		printUsage(env.stderr)
		return newExitError(exitUsage, errors.New("missing command"))
	}

	switch args[0] {
	case "gather-data":
		return gatherData(ctx, args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.stdout, "semerg %s\n", Version)
		return nil
	case "help", "-h", "--help":
		printUsage(env.stdout)
		return nil
	default:
		printUsage(env.stderr)
		return newExitError(exitUsage, fmt.Errorf("unknown command %q", args[0]))
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: semerg gather-data [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Write energy prices and production time series to the specified output file.")
}

// gatherData fetches the prices and production series and writes them
// to the output file.
func gatherData(ctx context.Context, args []string, env environment) error {
	fs := pflag.NewFlagSet("gather-data", pflag.ContinueOnError)
	fs.SetOutput(env.stderr)

	configPath := fs.String("config", "", "path to config file (default ~/.semerg/config)")
	includeOverhead := fs.Bool("include-overhead", false, "also write prices with taxes, margin and transmission fees")
	date := fs.String("date", "", "start fetch from `DATE` (YYYY-MM-DD), default to today")
	wait := fs.Float64("wait-between-requests", 0, "minimum `SECONDS` between production requests")
	continueOnError := fs.Bool("continue-on-error", false, "fetch every production series even after one fails")
	output := fs.String("output", "", "output `FILE`, - for stdout; results are discarded when unset")
	logLevel := fs.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return newExitError(exitUsage, err)
	}
	if fs.NArg() > 0 {
		return newExitError(exitUsage, fmt.Errorf("unexpected arguments: %v", fs.Args()))
	}

	interval, err := ratelimit.FromSeconds(*wait)
	if err != nil {
		return newExitError(exitUsage, fmt.Errorf("invalid --wait-between-requests: %w", err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return newExitError(exitConfig, fmt.Errorf("failed to load configuration: %w", err))
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = logLevel
	}
	logger := logging.New(env.stderr, logging.LevelFromString(level))
	logger.Debug("semerg is starting...", slog.String("version", Version))

	w, err := window.ForDate(*date, env.now(), env.location)
	if err != nil {
		return newExitError(exitUsage, err)
	}

	limiter := ratelimit.New(map[ratelimit.API]time.Duration{
		ratelimit.APIFingrid: interval,
	})

	prices := entsoe.NewPriceFetcher(
		cfg.Entsoe.SecurityToken,
		cfg.Entsoe.Area,
		entsoe.NewClient(cfg.Entsoe.BaseURL, cfg.HTTP.Timeout),
	)

	fingridClient := fingrid.NewClient(cfg.Fingrid.BaseURL, cfg.Fingrid.AuthenticationToken, cfg.HTTP.Timeout)
	var production []fetcher.Fetcher
	for _, ds := range fingrid.Datasets() {
		production = append(production, fingrid.NewDatasetFetcher(ds, fingridClient, logger.With("module", "fingrid")))
	}

	coord := coordinator.New(prices, production,
		coordinator.WithLimiter(limiter),
		coordinator.WithLogger(logger.With("module", "coordinator")),
		coordinator.WithContinueOnError(*continueOnError))

	collection, err := coord.Run(ctx, w)
	if err != nil {
		return newExitError(exitFetch, err)
	}

	if n := len(collection.Failures) + len(collection.Skipped); n > 0 {
		logger.Warn("writing partial result",
			slog.Int("fetched", len(collection.Production)),
			slog.Int("missing", n))
	}

	var adjusted fetcher.Series
	if *includeOverhead {
		t := tariffFromConfig(cfg.Tariff)
		t.Location = env.location
		adjusted = t.Apply(collection.Prices)
	}

	doc := report.Build(env.now(), w, collection, adjusted)

	switch *output {
	case "":
		logger.Info("no output given, discarding result")
	case "-":
		if err := report.Encode(env.stdout, doc); err != nil {
			return newExitError(exitOutput, err)
		}
	default:
		if err := report.WriteFile(*output, doc); err != nil {
			return newExitError(exitOutput, err)
		}
		logger.Info("result written", slog.String("path", *output))
	}

	return nil
}

func tariffFromConfig(c config.TariffConfig) tariff.Tariff {
	return tariff.Tariff{
		VAT:               c.VAT,
		Margin:            c.Margin,
		ElectricityTax:    c.ElectricityTax,
		SupplySecurityFee: c.SupplySecurityFee,
		TransmissionDay:   c.TransmissionDay,
		TransmissionNight: c.TransmissionNight,
		DayStartHour:      c.DayStartHour,
		DayEndHour:        c.DayEndHour,
	}
}

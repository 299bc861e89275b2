package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/breakmap/pkg/config"
	"github.com/umputun/breakmap/pkg/dataset"
	"github.com/umputun/breakmap/pkg/loader"
	"github.com/umputun/breakmap/pkg/metrics"
	"github.com/umputun/breakmap/pkg/palette"
	"github.com/umputun/breakmap/pkg/scheduler"
	"github.com/umputun/breakmap/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults used if not set"`
	Data   string `short:"d" long:"data" env:"DATA" description:"path to XML feed file, overrides config"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Check  bool   `long:"check" description:"load and parse the data file, print summary and exit"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting breakmap version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts, metrics.New())
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] shutdown complete")
}

// run wires loader, dataset, refresher and server, blocks until ctx is canceled
func run(ctx context.Context, opts Opts, m *metrics.Metrics) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mapping, fallback, err := cfg.ColorMapping()
	if err != nil {
		return fmt.Errorf("failed to make color mapping: %w", err)
	}

	ld := loader.New(loader.Params{
		TTL:        cfg.Data.CacheTTL,
		Retries:    cfg.Data.RetryAttempts,
		RetryDelay: cfg.Data.RetryDelay,
		Metrics:    m,
	})
	ds := dataset.New(dataset.Params{Path: cfg.Data.Path, Loader: ld, Metrics: m})

	// load failure is not fatal, the page shows it and the refresher retries on file change
	snap := ds.Reload(ctx)
	if opts.Check {
		return check(os.Stdout, snap)
	}

	refresher := scheduler.NewScheduler(scheduler.Params{Reloader: ds, Interval: cfg.Data.RefreshInterval})
	refresher.Start(ctx)
	defer refresher.Stop()

	srv, err := server.New(cfg, ds, palette.New(mapping, fallback), revision, opts.Debug)
	if err != nil {
		return fmt.Errorf("failed to make server: %w", err)
	}
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// loadConfig reads config file if set and applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	if opts.Data != "" {
		cfg.Data.Path = opts.Data
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	return cfg, nil
}

// check prints a summary of the loaded snapshot, returns the load error if any
func check(w io.Writer, snap dataset.Snapshot) error {
	if snap.Err != nil {
		return fmt.Errorf("failed to load %s: %w", snap.Path, snap.Err)
	}
	if snap.Meta.Title != "" {
		_, _ = fmt.Fprintf(w, "feed: %s (%s)\n", snap.Meta.Title, snap.Meta.Type)
	}
	_, _ = fmt.Fprintf(w, "rows: %d\ncolumns: %d\nwith coordinates: %d\n",
		snap.Table.Len(), len(snap.Table.Columns), snap.Table.GeoRows())
	for _, c := range snap.Table.Columns {
		_, _ = fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gsalaz98/lean-tui/internal/config"
	"github.com/gsalaz98/lean-tui/internal/dashboard"
	"github.com/gsalaz98/lean-tui/internal/diag"
	"github.com/gsalaz98/lean-tui/internal/feed"
	"github.com/gsalaz98/lean-tui/internal/logging"
)

type cliOptions struct {
	configPath string
	feedMode   string
	feedURL    string
	logFile    string
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("lean-tui", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.configPath, "config", "", "path to the YAML config file")
	fs.StringVar(&opts.feedMode, "feed", "", "feed mode override: stdin, websocket, or exec")
	fs.StringVar(&opts.feedURL, "url", "", "websocket feed URL override")
	fs.StringVar(&opts.logFile, "log", "", "diagnostic log file override")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	return opts, nil
}

// resolveStartupConfig layers CLI overrides on top of the file and
// environment configuration and re-validates the result.
func resolveStartupConfig(opts cliOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.feedMode != "" {
		cfg.Feed.Mode = opts.feedMode
	}
	if opts.feedURL != "" {
		cfg.Feed.URL = opts.feedURL
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		os.Exit(2)
	}

	cfg, err := resolveStartupConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(logging.Config{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Level:      cfg.Log.Level,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}

	recorder, err := diag.NewRecorder(cfg.Diagnostics.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare diagnostics dir: %v\n", err)
		os.Exit(1)
	}

	session, err := dashboard.Start(dashboard.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start dashboard: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runner *feed.Runner
	if cfg.Feed.Mode == config.ModeExec {
		runner = feed.NewRunner(cfg.Feed.Command)
	}

	feedDone := make(chan error, 1)
	go func() {
		switch cfg.Feed.Mode {
		case config.ModeWebsocket:
			feedDone <- feed.Dial(ctx, cfg.Feed.URL, session, recorder)
		case config.ModeExec:
			feedDone <- runner.Run(ctx, session, recorder)
		default:
			feedDone <- feed.Run(ctx, os.Stdin, session, recorder)
		}
	}()

	var feedErr error
	select {
	case feedErr = <-feedDone:
	case <-ctx.Done():
	}
	if errors.Is(feedErr, context.Canceled) {
		feedErr = nil
	}

	if runner != nil {
		_ = runner.Stop()
	}

	// Restore the terminal before anything is written to stderr.
	stopErr := session.Stop()

	if feedErr != nil {
		logging.Errorf("feed ended with error: %v", feedErr)
		fmt.Fprintf(os.Stderr, "feed error: %v\n", feedErr)
	}
	if stopErr != nil {
		fmt.Fprintf(os.Stderr, "dashboard exited with error: %v\n", stopErr)
	}
	if feedErr != nil || stopErr != nil {
		os.Exit(1)
	}
}

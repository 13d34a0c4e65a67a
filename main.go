// codecraft - terminal client for CodeCraft Context.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/cli"
	"github.com/jeranaias/codecraft-tui/internal/config"
	"github.com/jeranaias/codecraft-tui/internal/logging"
	"github.com/jeranaias/codecraft-tui/internal/storage"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func run(argv []string) int {
	cmd, args := cli.Parse(argv)
	if args.NoColor {
		cli.DisableColors()
		styles.DisableColor()
	}

	cfg, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(os.Stdout, os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}

	logger, closeLog := openLog(cfg, args)
	defer func() { _ = closeLog() }()
	logger.Info("start", zap.String("command", cmd.String()), zap.String("version", Version))

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Server.URL,
		Timeout:           cfg.Server.Timeout(),
		AnalyzeTimeout:    cfg.Server.AnalyzeTimeout(),
		RequestsPerSecond: cfg.Server.RateLimit,
		Burst:             max(1, int(math.Ceil(cfg.Server.RateLimit))),
		UserAgent:         "codecraft-tui/" + Version,
		Logger:            logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cli.Env{
		Out:         os.Stdout,
		Err:         os.Stderr,
		In:          os.Stdin,
		Config:      cfg,
		ConfigPath:  args.ConfigPath,
		Backend:     client,
		ServerURL:   client.BaseURL(),
		OpenHistory: historyOpener(cfg, logger),
		Logger:      logger,
		Interactive: cli.IsTTY() && cli.IsStdoutTTY(),
		JSON:        args.JSON,
		Quiet:       args.Quiet,
		Verbose:     args.Verbose,
	}
	defer env.Close()

	err = cli.Run(ctx, cmd, args, env)
	if err != nil {
		logger.Warn("command failed", zap.String("command", cmd.String()), zap.Error(err))
	}
	cli.DisplayError(os.Stdout, os.Stderr, cmd.String(), err, args.JSON)
	return cli.GetExitCode(err)
}

// loadConfig loads the config file and applies the global flag overrides.
// A file that cannot be parsed falls back to defaults with a warning; a file
// that parses but fails validation is an error.
func loadConfig(args cli.Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil && !args.JSON {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.Server != "" {
		cfg.Server.URL = strings.TrimRight(args.Server, "/")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLog opens the rotating log file. Logging is best effort: when the file
// cannot be opened the client runs with a no-op logger.
func openLog(cfg *config.Config, args cli.Args) (*zap.Logger, func() error) {
	noop := func() error { return nil }

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	path, err := cfg.LogPath()
	if err != nil {
		return logging.Nop(), noop
	}
	logger, closeFn, err := logging.New(logging.Options{
		Path:       path,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		if args.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
		return logging.Nop(), noop
	}
	return logger, closeFn
}

// historyOpener returns the lazy opener for the transcript store.
func historyOpener(cfg *config.Config, logger *zap.Logger) func() (*storage.Store, error) {
	return func() (*storage.Store, error) {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		store, err := storage.Open(path)
		if err != nil {
			return nil, err
		}
		store.MaxSessions = cfg.History.MaxSessions
		logger.Debug("history opened", zap.String("path", path))
		return store, nil
	}
}

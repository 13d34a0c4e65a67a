// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Command environment and dispatch.
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/config"
	"github.com/jeranaias/codecraft-tui/internal/storage"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// Env carries everything a command needs. main builds one per process; tests
// build one around buffers, a fake backend and an in-memory history store.
type Env struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	Config *config.Config

	// ConfigPath is where config changes are written ("" = default location).
	ConfigPath string

	Backend   workbench.Backend
	ServerURL string

	// OpenHistory opens the transcript store. It is called at most once.
	OpenHistory func() (*storage.Store, error)

	Logger *zap.Logger

	// Interactive is true when stdin and stdout are terminals.
	Interactive bool

	JSON    bool
	Quiet   bool
	Verbose bool

	// Now is the clock used for relative times (default time.Now).
	Now func() time.Time

	historyOnce  sync.Once
	historyStore *storage.Store
	historyErr   error
}

// history returns the transcript store, opening it on first use.
func (e *Env) history() (*storage.Store, error) {
	e.historyOnce.Do(func() {
		if e.OpenHistory == nil {
			e.historyErr = fmt.Errorf("history store is not configured")
			return
		}
		e.historyStore, e.historyErr = e.OpenHistory()
	})
	return e.historyStore, e.historyErr
}

// Close releases the history store if it was opened.
func (e *Env) Close() error {
	if e.historyStore != nil {
		return e.historyStore.Close()
	}
	return nil
}

func (e *Env) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// infof writes a progress line to stderr unless quiet or in JSON mode.
func (e *Env) infof(format string, args ...any) {
	if e.Quiet || e.JSON {
		return
	}
	fmt.Fprintf(e.Err, format+"\n", args...)
}

// warnf writes a warning to stderr unless in JSON mode.
func (e *Env) warnf(format string, args ...any) {
	if e.JSON {
		return
	}
	fmt.Fprintf(e.Err, "%s %s\n", WarningStyle.Render("[WARN]"), fmt.Sprintf(format, args...))
}

// writeJSON writes a success envelope for command.
func (e *Env) writeJSON(command string, data any) error {
	return NewJSONResponse(command, data).Write(e.Out)
}

// saveConfig validates and writes cfg to the configured location.
func (e *Env) saveConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if e.ConfigPath != "" {
		return config.SaveTOML(cfg, e.ConfigPath)
	}
	return config.Save(cfg)
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes cmd. Errors are returned for the caller to display once.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	if env.Config == nil {
		env.Config = config.Default()
	}
	env.log().Debug("command", zap.String("command", cmd.String()), zap.Strings("args", args.Raw))

	switch cmd {
	case CmdTUI:
		return runTUI(ctx, env, args)
	case CmdProjects:
		return runProjects(ctx, env, args)
	case CmdAnalyze:
		return runAnalyze(ctx, env, args)
	case CmdAsk:
		return runAsk(ctx, env, args)
	case CmdChat:
		return runChat(ctx, env, args)
	case CmdHistory:
		return runHistory(ctx, env, args)
	case CmdExport:
		return runExport(ctx, env, args)
	case CmdConfig:
		return runConfig(ctx, env, args)
	case CmdVersion:
		if env.JSON {
			return env.writeJSON("version", CurrentVersion())
		}
		PrintVersion(env.Out)
		return nil
	case CmdHelp:
		PrintUsage(env.Out)
		return nil
	default:
		msg := fmt.Sprintf("unknown command: %s", args.Name)
		if s := SuggestCommand(args.Name); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return NewUsageError(msg, "codecraft help")
	}
}

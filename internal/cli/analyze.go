// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// analyze.go - The "codecraft analyze" command.
//
// Command: analyze <path> --name NAME
// Aliases: analyse
//
// Examples:
//
//	codecraft analyze ./src --name backend
//	codecraft analyze ./src --name backend --watch
//
// Flags:
//
//	-n, --name NAME   Project name (required)
//	--watch           Re-analyze whenever files under <path> change
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/watcher"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

const analyzeUsage = "codecraft analyze <path> --name <name> [--watch]"

// AnalyzeData is the JSON payload of "codecraft analyze".
type AnalyzeData struct {
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	Message       string   `json:"message"`
	FilesAnalyzed int      `json:"files_analyzed"`
	DurationMs    int64    `json:"duration_ms"`
	Projects      []string `json:"projects"`
}

func runAnalyze(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	path := p.Positional(0)
	name := p.Flag("name", "n")
	watch := p.BoolFlag("watch")
	if watch && env.JSON {
		return NewUsageError("--watch cannot be combined with --json", analyzeUsage)
	}

	runner := workbench.NewRunner(workbench.New(env.Logger), env.Backend)

	data, err := analyzeOnce(ctx, env, runner, path, name)
	if workbench.IsAlert(err) {
		return err
	}
	if !watch {
		if err != nil {
			return err
		}
		if env.JSON {
			return env.writeJSON("analyze", data)
		}
		return nil
	}
	w, err := watcher.New(watcher.Options{
		Root:     strings.TrimSpace(path),
		Debounce: env.Config.Watch.Debounce(),
		Ignore:   env.Config.Watch.Ignore,
		Logger:   env.log(),
	})
	if err != nil {
		return NewCommandError("analyze", "watch", "could not watch "+path, err)
	}
	defer w.Close()

	env.infof("Watching %s for changes (Ctrl+C to stop)", w.Root())
	return w.Run(ctx, func(b watcher.Batch) {
		env.infof("%d file(s) changed, re-analyzing...", len(b.Paths))
		if _, err := analyzeOnce(ctx, env, runner, path, name); err != nil {
			env.log().Warn("re-analysis failed", zap.Error(err))
		}
	})
}

// analyzeOnce runs one analysis and prints the status line the way the
// analyze panel shows it.
func analyzeOnce(ctx context.Context, env *Env, runner *workbench.Runner, path, name string) (*AnalyzeData, error) {
	if !env.JSON && !env.Quiet && strings.TrimSpace(path) != "" && strings.TrimSpace(name) != "" {
		fmt.Fprintln(env.Err, workbench.StatusAnalyzing)
	}

	start := time.Now()
	resp, err := runner.Analyze(ctx, path, name)
	took := time.Since(start)
	if workbench.IsAlert(err) {
		return nil, err
	}

	if !env.JSON {
		status := runner.Bench.Status()
		if err != nil {
			fmt.Fprintln(env.Err, ErrorStyle.Render(status))
		} else {
			fmt.Fprintln(env.Out, SuccessStyle.Render(status))
			env.infof("%s", DimStyle.Render("took "+formatDurationShort(took)))
		}
	}
	if err != nil {
		return nil, err
	}

	if resp == nil {
		resp = &api.AnalyzeResponse{}
	}
	return &AnalyzeData{
		Path:          strings.TrimSpace(path),
		Name:          strings.TrimSpace(name),
		Message:       resp.Message,
		FilesAnalyzed: resp.FilesAnalyzed,
		DurationMs:    took.Milliseconds(),
		Projects:      runner.Bench.Projects.Names(),
	}, nil
}

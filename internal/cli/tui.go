// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - The full-screen interface, the default command.
//
// Command: tui
// Aliases: ui
//
// Examples:
//
//	codecraft
//	codecraft --project backend
//	codecraft tui --path ./src --resume 1
//
// Flags:
//
//	-p, --project NAME   Project selected once the list loads (default: ui.last_project)
//	--path DIR           Prefill the analyze form
//	--resume REF         Continue a saved session
package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/ui/chat"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

// tuiOptions builds the model options from flags and config. It opens the
// history store when autosave or --resume needs it.
func tuiOptions(ctx context.Context, env *Env, args Args) (chat.Options, error) {
	p := args.Parser()
	cfg := env.Config

	opts := chat.Options{
		ServerURL:      env.ServerURL,
		RenderMarkdown: cfg.UI.RenderMarkdown,
		ShowHelp:       cfg.UI.ShowHelp,
		ExportDir:      ".",
		ExportFormat:   "md",
		InitialProject: p.FlagOrDefault("project", p.FlagOrDefault("p", cfg.UI.LastProject)),
		InitialPath:    p.Flag("path"),
		Logger:         env.Logger,
	}

	if ref := p.Flag("resume"); ref != "" {
		store, err := env.history()
		if err != nil {
			return opts, NewCommandError("tui", "resume", "could not open history", err)
		}
		t, err := store.Resolve(ctx, ref)
		if err != nil {
			return opts, err
		}
		opts.Resume = t
		if t.Project != "" && p.Flag("project", "p") == "" {
			opts.InitialProject = t.Project
		}
	}

	if cfg.History.Enabled {
		store, err := env.history()
		if err != nil {
			env.log().Warn("history disabled for this session", zap.Error(err))
		} else {
			opts.History = store
		}
	}
	return opts, nil
}

func runTUI(ctx context.Context, env *Env, args Args) error {
	if !env.Interactive {
		return &TTYRequiredError{Operation: "start the full-screen interface"}
	}
	if env.JSON {
		return NewUsageError("the full-screen interface does not support --json", "codecraft projects --json")
	}

	opts, err := tuiOptions(ctx, env, args)
	if err != nil {
		return err
	}

	theme := styles.NewTheme(styles.ParseMode(env.Config.UI.Theme))
	m := chat.New(theme, env.Backend, opts)

	prog := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := prog.Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return NewCommandError("tui", "run", "interface failed", err)
	}

	if fm, ok := final.(chat.Model); ok {
		rememberProject(env, fm.Workbench().Projects.Selected())
	}
	return nil
}

// rememberProject stores the last selected project for the next start.
func rememberProject(env *Env, project string) {
	if project == "" || project == env.Config.UI.LastProject {
		return
	}
	env.Config.UI.LastProject = project
	if err := env.saveConfig(env.Config); err != nil {
		env.log().Warn("could not remember last project", zap.Error(err))
	}
}

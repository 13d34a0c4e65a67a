// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/export"
	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// historySaveTimeout bounds a single autosave.
const historySaveTimeout = 5 * time.Second

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

func loadProjectsCmd(backend workbench.Backend) tea.Cmd {
	return func() tea.Msg {
		projects, err := backend.ListProjects(context.Background())
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

func analyzeCmd(ctx context.Context, backend workbench.Backend, req api.AnalyzeRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, err := backend.AnalyzeProject(ctx, req.ProjectPath, req.ProjectName)
		return AnalyzeDoneMsg{Response: resp, Err: err, Took: time.Since(start)}
	}
}

func askCmd(ctx context.Context, backend workbench.Backend, req api.AskRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, err := backend.AskQuestion(ctx, req.Question, req.ProjectName)
		return AskDoneMsg{Response: resp, Err: err, Took: time.Since(start)}
	}
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

// saveHistoryCmd saves a snapshot; the live transcript keeps changing while the
// command runs.
func saveHistoryCmd(saver HistorySaver, snapshot *model.Transcript) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historySaveTimeout)
		defer cancel()
		return HistorySavedMsg{Err: saver.Save(ctx, snapshot)}
	}
}

func exportCmd(snapshot *model.Transcript, format string, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(snapshot, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

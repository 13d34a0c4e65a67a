// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
package chat

import (
	"time"

	"github.com/jeranaias/codecraft-tui/internal/api"
)

// =============================================================================
// BACKEND RESULTS
// =============================================================================

// ProjectsLoadedMsg carries the result of a project list request.
type ProjectsLoadedMsg struct {
	Projects []api.Project
	Err      error
}

// AnalyzeDoneMsg carries the result of an analysis request.
type AnalyzeDoneMsg struct {
	Response *api.AnalyzeResponse
	Err      error
	Took     time.Duration
}

// AskDoneMsg carries the result of a question.
type AskDoneMsg struct {
	Response *api.AskResponse
	Err      error
	Took     time.Duration
}

// =============================================================================
// LOCAL PERSISTENCE
// =============================================================================

// HistorySavedMsg reports an autosave of the transcript.
type HistorySavedMsg struct {
	Err error
}

// ExportDoneMsg reports a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

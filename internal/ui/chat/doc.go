// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
//
// The model owns a workbench.Workbench and drives its Begin/Complete transitions
// from the Bubble Tea update loop. Network calls run in tea.Cmd goroutines and
// report back through the messages in messages.go:
//
//   - ProjectsLoadedMsg: result of GET /api/projects
//   - AnalyzeDoneMsg: result of POST /api/analyze_project
//   - AskDoneMsg: result of POST /api/ask_question
//   - HistorySavedMsg, ExportDoneMsg: local persistence results
//
// Layout, top to bottom: header, analyze panel, project selector, transcript,
// question input, help bar. Validation failures open a modal alert and send
// nothing.
package chat

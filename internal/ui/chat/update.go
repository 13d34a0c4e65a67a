// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
package chat

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/ui/components"
	"github.com/jeranaias/codecraft-tui/internal/util"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ProjectsLoadedMsg:
		return m.handleProjectsLoaded(msg)

	case AnalyzeDoneMsg:
		return m.handleAnalyzeDone(msg)

	case AskDoneMsg:
		return m.handleAskDone(msg)

	case HistorySavedMsg:
		if msg.Err != nil {
			m.log.Warn("autosave failed", zap.Error(msg.Err))
			m.toasts.AddError("History not saved: " + msg.Err.Error())
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.toasts.AddError("Export failed: " + msg.Err.Error())
		} else {
			m.toasts.AddSuccess("Exported to " + msg.Path)
		}
		m.syncLayout()
		return m, nil

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) > 0 {
			m.syncLayout()
		}
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		if !m.bench.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.bench.Asking() {
			m.refreshTranscript()
		}
		return m, cmd
	}

	return m.updateFocused(msg)
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The alert is modal: only dismissal and quit get through.
	if m.alert.Visible() {
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m.quit()
		case key.Matches(msg, m.keyMap.Submit), key.Matches(msg, m.keyMap.Cancel):
			m.alert.Dismiss()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()
	case key.Matches(msg, m.keyMap.Cancel):
		return m.handleCancel()
	case key.Matches(msg, m.keyMap.NextField):
		return m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keyMap.PrevField):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keyMap.Analyze):
		return m.submitAnalyze()
	case key.Matches(msg, m.keyMap.Reload):
		return m, loadProjectsCmd(m.backend)
	case key.Matches(msg, m.keyMap.NextProject):
		m.bench.Projects.Next()
		return m, nil
	case key.Matches(msg, m.keyMap.PrevProject):
		m.bench.Projects.Prev()
		return m, nil
	case key.Matches(msg, m.keyMap.Export):
		return m.startExport()
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.syncLayout()
		return m, nil
	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()
	}

	if m.focus == FocusProject {
		switch msg.Type {
		case tea.KeyUp:
			m.bench.Projects.Prev()
		case tea.KeyDown:
			m.bench.Projects.Next()
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleSubmit routes enter by focus: it walks the analyze form, runs the
// analysis from the name field and asks from the question field.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	switch m.focus {
	case FocusPath:
		return m.setFocus(FocusName)
	case FocusName:
		return m.submitAnalyze()
	case FocusProject:
		return m.setFocus(FocusQuestion)
	default:
		return m.submitAsk()
	}
}

func (m Model) handleCancel() (tea.Model, tea.Cmd) {
	if !m.analyzeCancel.active() && !m.askCancel.active() {
		return m, nil
	}
	m.analyzeCancel.clear()
	m.askCancel.clear()
	m.toasts.AddStatus("Request cancelled")
	m.syncLayout()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.analyzeCancel.clear()
	m.askCancel.clear()
	m.quitting = true
	return m, tea.Quit
}

func (m Model) setFocus(f Focus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.pathInput.Blur()
	m.nameInput.Blur()
	m.questionInput.Blur()
	m.selector.Focused = f == FocusProject

	var cmd tea.Cmd
	switch f {
	case FocusPath:
		cmd = m.pathInput.Focus()
	case FocusName:
		cmd = m.nameInput.Focus()
	case FocusQuestion:
		cmd = m.questionInput.Focus()
	}
	m.syncLayout()
	return m, cmd
}

// updateFocused forwards msg to the focused text input.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FocusPath:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case FocusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case FocusQuestion:
		m.questionInput, cmd = m.questionInput.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) submitAnalyze() (tea.Model, tea.Cmd) {
	wasBusy := m.bench.Busy()
	req, err := m.bench.BeginAnalyze(
		util.NormalizeInput(m.pathInput.Value()),
		util.NormalizeName(m.nameInput.Value()),
	)
	if err != nil {
		return m.handleBeginError(err)
	}

	ctx := m.analyzeCancel.start(context.Background())
	return m, tea.Batch(analyzeCmd(ctx, m.backend, req), m.spinnerCmd(wasBusy))
}

func (m Model) submitAsk() (tea.Model, tea.Cmd) {
	wasBusy := m.bench.Busy()
	req, err := m.bench.BeginAsk(util.NormalizeInput(m.questionInput.Value()))
	if err != nil {
		return m.handleBeginError(err)
	}

	// The question is already in the transcript; clear the field for the next one.
	m.questionInput.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	ctx := m.askCancel.start(context.Background())
	return m, tea.Batch(askCmd(ctx, m.backend, req), m.spinnerCmd(wasBusy))
}

// handleBeginError shows validation failures as the modal alert. Nothing is sent.
func (m Model) handleBeginError(err error) (tea.Model, tea.Cmd) {
	var alert *workbench.AlertError
	switch {
	case errors.As(err, &alert):
		m.alert.Show(alert.Text)
	case errors.Is(err, workbench.ErrBusy):
		m.toasts.AddStatus("Please wait, " + err.Error())
		m.syncLayout()
	default:
		m.toasts.AddError(err.Error())
		m.syncLayout()
	}
	return m, nil
}

// spinnerCmd starts the spinner unless it is already running for another request.
func (m Model) spinnerCmd(alreadyRunning bool) tea.Cmd {
	if alreadyRunning {
		return nil
	}
	return m.spinner.Tick
}

func (m Model) handleProjectsLoaded(msg ProjectsLoadedMsg) (tea.Model, tea.Cmd) {
	m.bench.ApplyProjects(msg.Projects, msg.Err)
	if msg.Err != nil {
		m.toasts.AddError("Could not load projects: " + workbench.ErrorText(msg.Err))
	} else if m.opts.InitialProject != "" && m.bench.SelectProject(m.opts.InitialProject) {
		m.opts.InitialProject = ""
	}
	m.syncLayout()
	return m, nil
}

func (m Model) handleAnalyzeDone(msg AnalyzeDoneMsg) (tea.Model, tea.Cmd) {
	m.analyzeCancel.clear()
	reload := m.bench.CompleteAnalyze(msg.Response, msg.Err)
	m.log.Debug("analyze round trip", zap.Duration("took", msg.Took), zap.Bool("reload", reload))
	if reload {
		return m, loadProjectsCmd(m.backend)
	}
	return m, nil
}

func (m Model) handleAskDone(msg AskDoneMsg) (tea.Model, tea.Cmd) {
	m.askCancel.clear()
	m.bench.CompleteAsk(msg.Response, msg.Err)
	m.log.Debug("ask round trip", zap.Duration("took", msg.Took), zap.Bool("ok", msg.Err == nil))

	m.refreshTranscript()
	if m.bench.TakeScrollToEnd() {
		m.viewport.GotoBottom()
	}

	if m.opts.History == nil {
		return m, nil
	}
	return m, saveHistoryCmd(m.opts.History, m.bench.Transcript.Clone())
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.bench.Transcript.IsEmpty() {
		m.toasts.AddStatus("Nothing to export yet")
		m.syncLayout()
		return m, nil
	}
	return m, exportCmd(m.bench.Transcript.Clone(), m.opts.ExportFormat, m.exportOptions())
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Field borders and padding take 4 columns; prompts are drawn inside.
	fieldWidth := max(m.width-4, 10)
	m.pathInput.Width = fieldWidth - len(m.pathInput.Prompt) - 1
	m.nameInput.Width = fieldWidth - len(m.nameInput.Prompt) - 1
	m.questionInput.Width = fieldWidth - len(m.questionInput.Prompt) - 1

	m.selector.Width = min(max(m.width-16, 20), 60)
	m.help.Width = m.width

	if w := max(m.width-6, 20); w != m.markdown.Width() {
		m.markdown.SetWidth(w)
		clear(m.renderCache)
	}

	m.syncLayout()
	m.refreshTranscript()
	return m, nil
}

// syncLayout gives the transcript viewport whatever height the other sections
// leave, measured from their rendered output.
func (m *Model) syncLayout() {
	if m.width == 0 {
		return
	}
	used := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderAnalyzePanel()) +
		lipgloss.Height(m.renderSelector()) +
		lipgloss.Height(m.renderQuestion()) +
		lipgloss.Height(m.renderFooter()) +
		1 // transcript top border

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-used, 1)
}

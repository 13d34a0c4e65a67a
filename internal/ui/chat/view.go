// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/components"
)

const emptyTranscriptHint = "No questions yet. Pick a project and ask about its code."

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.alert.Visible() {
		return m.alert.Overlay(m.theme, m.width, m.height)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderAnalyzePanel(),
		m.renderSelector(),
		m.theme.Transcript.Width(m.width).Render(m.viewport.View()),
		m.renderQuestion(),
		m.renderFooter(),
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("🕷️ CodeCraft Context")
	info := m.theme.HeaderInfo.Render(m.opts.ServerURL)
	return m.theme.Header.Width(m.width).Render(brand + "  " + info)
}

func (m Model) renderAnalyzePanel() string {
	path := m.fieldStyle(FocusPath).Render(m.pathInput.View())
	name := m.fieldStyle(FocusName).Render(m.nameInput.View())

	button := m.theme.Button.Render("Analyze (C-a)")
	if m.focus == FocusName {
		button = m.theme.ButtonActive.Render("Analyze (C-a)")
	}
	if m.bench.Analyzing() {
		button = m.theme.ButtonActive.Render(m.spinner.View() + " Analyzing")
	}

	status := components.StatusBar{Status: m.bench.Status(), Width: m.width}
	return lipgloss.JoinVertical(lipgloss.Left, path, name, button, status.Render(m.theme))
}

func (m Model) renderSelector() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Label.Render("Project"),
		m.selector.Render(m.theme),
	)
}

func (m Model) renderQuestion() string {
	return m.fieldStyle(FocusQuestion).Render(m.questionInput.View())
}

func (m Model) renderFooter() string {
	parts := []string{}
	if m.toasts.HasToasts() {
		parts = append(parts, m.toasts.RenderToasts(m.theme, m.width))
	}
	parts = append(parts, m.theme.Help.Render(m.help.View(m.keyMap)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) fieldStyle(f Focus) lipgloss.Style {
	style := m.theme.Field
	if m.focus == f {
		style = m.theme.FieldFocused
	}
	return style.Width(max(m.width-2, 10))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the transcript into the viewport.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderTranscript() string {
	msgs := m.bench.Transcript.Messages()
	if len(msgs) == 0 && !m.bench.Asking() {
		return m.theme.EmptyHint.Render(emptyTranscriptHint)
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if m.bench.Asking() {
		blocks = append(blocks, m.theme.RoleAnswer.Render("AI:")+" "+m.spinner.View()+" thinking...")
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg *model.ChatMessage) string {
	width := max(m.viewport.Width-2, 10)

	switch {
	case msg.IsQuestion():
		line := m.theme.RoleQuestion.Render("You:") + " " + msg.Content +
			"  " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
		return m.theme.Question.Width(width).Render(line)

	case msg.IsError:
		return m.theme.ErrorAnswer.Width(width).Render(
			m.theme.RoleError.Render("AI:") + " Error - " + msg.Content)

	default:
		return m.theme.Answer.Width(width).Render(
			m.theme.RoleAnswer.Render("AI:") + "\n" + m.renderAnswer(msg))
	}
}

// renderAnswer renders an answer body once per width.
func (m Model) renderAnswer(msg *model.ChatMessage) string {
	if out, ok := m.renderCache[msg.ID]; ok {
		return out
	}
	out := m.markdown.Render(msg.Content)
	m.renderCache[msg.ID] = out
	return out
}

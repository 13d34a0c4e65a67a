// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the codecraft TUI.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

// =============================================================================
// ALERT MODAL
// =============================================================================

// Alert is a blocking message box. While visible it captures all keys until
// dismissed.
type Alert struct {
	text    string
	visible bool
}

// Show displays text in the modal.
func (a *Alert) Show(text string) {
	a.text = text
	a.visible = true
}

// Dismiss hides the modal.
func (a *Alert) Dismiss() {
	a.visible = false
}

// Visible reports whether the modal is shown.
func (a *Alert) Visible() bool {
	return a.visible
}

// Text returns the current alert text.
func (a *Alert) Text() string {
	return a.text
}

// Render draws the alert box. The caller places it over the screen.
func (a *Alert) Render(theme *styles.Theme, width int) string {
	if !a.visible {
		return ""
	}

	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.AlertTitle.Render(styles.StatusIndicators.Warning+" "+a.text),
		"",
		theme.AlertHint.Render("press enter or esc to dismiss"),
	)
	return theme.Alert.MaxWidth(maxWidth).Render(body)
}

// Overlay centers the alert over a screen of the given size.
func (a *Alert) Overlay(theme *styles.Theme, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, a.Render(theme, width))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the codecraft TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
	"github.com/jeranaias/codecraft-tui/internal/util"
)

// =============================================================================
// PROJECT SELECT
// =============================================================================

// ProjectSelect renders a model.ProjectList as a select control. Closed, it
// shows the current choice; focused, it lists up to MaxVisible options around
// the selection.
type ProjectSelect struct {
	List       *model.ProjectList
	Focused    bool
	Width      int
	MaxVisible int
}

// NewProjectSelect creates a select over list.
func NewProjectSelect(list *model.ProjectList) *ProjectSelect {
	return &ProjectSelect{List: list, Width: 40, MaxVisible: 6}
}

// Render draws the control.
func (s *ProjectSelect) Render(theme *styles.Theme) string {
	inner := s.Width - 4
	if inner < 10 {
		inner = 10
	}

	box := theme.SelectBox
	if s.Focused {
		box = theme.SelectBoxFocused
	}

	if !s.Focused {
		return box.Width(inner + 2).Render(s.renderOption(theme, s.current(), false, inner))
	}

	opts := s.List.Options()
	start, end := s.window(len(opts))
	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, theme.SelectPlaceholder.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		lines = append(lines, s.renderOption(theme, opts[i], i == s.List.SelectedIndex(), inner))
	}
	if end < len(opts) {
		lines = append(lines, theme.SelectPlaceholder.Render(fmt.Sprintf("  ↓ %d more", len(opts)-end)))
	}
	return box.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

func (s *ProjectSelect) current() model.Option {
	opts := s.List.Options()
	return opts[s.List.SelectedIndex()]
}

// window returns the [start, end) option range kept around the selection.
func (s *ProjectSelect) window(n int) (int, int) {
	max := s.MaxVisible
	if max <= 0 || max >= n {
		return 0, n
	}
	sel := s.List.SelectedIndex()
	start := sel - max/2
	if start < 0 {
		start = 0
	}
	end := start + max
	if end > n {
		end = n
		start = end - max
	}
	return start, end
}

func (s *ProjectSelect) renderOption(theme *styles.Theme, opt model.Option, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = "› "
	}
	label := util.PadRight(util.TruncateWidth(opt.Label, width-2), width-2)

	switch {
	case selected:
		return theme.SelectSelected.Render(marker + label)
	case opt.IsPlaceholder():
		return theme.SelectPlaceholder.Render(marker + label)
	default:
		return theme.SelectOption.Render(marker + label)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the codecraft TUI.
package components

import (
	"strings"

	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
	"github.com/jeranaias/codecraft-tui/internal/util"
)

// KeyHint is one "key description" pair shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar renders the status line and, below it, key hints.
type StatusBar struct {
	Status string
	Hints  []KeyHint
	Width  int
}

// Render draws the bar. Hints that do not fit the width are dropped from the end.
func (s StatusBar) Render(theme *styles.Theme) string {
	width := s.Width
	if width <= 0 {
		width = 80
	}

	status := s.Status
	if status == "" {
		status = "Ready"
	}
	line := theme.StatusStyle(s.Status).Width(width).Render(util.TruncateWidth(status, width-2))

	var hints []string
	used := 1
	for _, h := range s.Hints {
		w := util.StringWidth(h.Key) + util.StringWidth(h.Desc) + 3
		if used+w > width {
			break
		}
		used += w
		hints = append(hints, theme.ShortcutKey.Render(h.Key)+" "+theme.ShortcutDesc.Render(h.Desc))
	}
	if len(hints) == 0 {
		return line
	}
	return line + "\n" + theme.Help.Render(strings.Join(hints, "  "))
}

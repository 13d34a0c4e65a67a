// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the codecraft TUI.
package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// MarkdownRenderer renders answers with glamour, falling back to the plain
// code block parser when glamour is disabled or fails.
type MarkdownRenderer struct {
	mu       sync.Mutex
	mode     styles.Mode
	width    int
	enabled  bool
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer that wraps at width.
func NewMarkdownRenderer(mode styles.Mode, width int, enabled bool) *MarkdownRenderer {
	return &MarkdownRenderer{mode: mode, width: width, enabled: enabled}
}

// SetWidth changes the wrap width. The glamour renderer is rebuilt lazily.
func (r *MarkdownRenderer) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width != r.width {
		r.width = width
		r.renderer = nil
	}
}

// Width returns the current wrap width.
func (r *MarkdownRenderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// Render renders content for terminal display. Surrounding blank lines added
// by glamour are trimmed.
func (r *MarkdownRenderer) Render(content string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return ParseCodeBlocks(content, r.width)
	}

	if r.renderer == nil {
		tr, err := glamour.NewTermRenderer(r.styleOption(), glamour.WithWordWrap(r.wrapWidth()))
		if err != nil {
			r.enabled = false
			return ParseCodeBlocks(content, r.width)
		}
		r.renderer = tr
	}

	out, err := r.renderer.Render(content)
	if err != nil {
		return ParseCodeBlocks(content, r.width)
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) styleOption() glamour.TermRendererOption {
	switch r.mode {
	case styles.ModeDark:
		return glamour.WithStandardStyle("dark")
	case styles.ModeLight:
		return glamour.WithStandardStyle("light")
	default:
		return glamour.WithAutoStyle()
	}
}

func (r *MarkdownRenderer) wrapWidth() int {
	if r.width < 20 {
		return 20
	}
	return r.width
}

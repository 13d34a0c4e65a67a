// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

func init() {
	// Plain output keeps assertions independent of the test terminal
	lipgloss.SetColorProfile(termenv.Ascii)
}

var ansiRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes the escape codes chroma emits regardless of color profile.
func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

// =============================================================================
// ALERT
// =============================================================================

func TestAlert(t *testing.T) {
	var a Alert
	assert.False(t, a.Visible())
	assert.Empty(t, a.Render(testTheme(), 80))

	a.Show("Please enter both project path and name!")
	assert.True(t, a.Visible())
	out := a.Render(testTheme(), 80)
	assert.Contains(t, out, "Please enter both project path and name!")
	assert.Contains(t, out, "dismiss")

	a.Dismiss()
	assert.False(t, a.Visible())
	assert.Equal(t, "Please enter both project path and name!", a.Text())
}

func TestAlert_Overlay(t *testing.T) {
	var a Alert
	a.Show("hi")
	out := a.Overlay(testTheme(), 60, 20)
	assert.Equal(t, 20, lipgloss.Height(out))
	assert.Contains(t, out, "hi")
}

// =============================================================================
// PROJECT SELECT
// =============================================================================

func TestProjectSelect_Closed(t *testing.T) {
	list := model.NewProjectList()
	s := NewProjectSelect(list)

	assert.Contains(t, s.Render(testTheme()), model.PlaceholderLabel)

	list.Replace([]string{"alpha", "beta"})
	list.Select("beta")
	out := s.Render(testTheme())
	assert.Contains(t, out, "beta")
	assert.NotContains(t, out, "alpha")
}

func TestProjectSelect_FocusedListsOptions(t *testing.T) {
	list := model.NewProjectList()
	list.Replace([]string{"alpha", "beta"})
	list.Select("alpha")

	s := NewProjectSelect(list)
	s.Focused = true
	out := s.Render(testTheme())

	assert.Contains(t, out, model.PlaceholderLabel)
	assert.Contains(t, out, "› alpha")
	assert.Contains(t, out, "beta")
	assert.Less(t, strings.Index(out, model.PlaceholderLabel), strings.Index(out, "alpha"), "placeholder first")
}

func TestProjectSelect_Window(t *testing.T) {
	list := model.NewProjectList()
	list.Replace([]string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"})
	s := NewProjectSelect(list)
	s.MaxVisible = 4

	start, end := s.window(10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)

	list.Select("p9")
	start, end = s.window(10)
	assert.Equal(t, 6, start)
	assert.Equal(t, 10, end)

	s.Focused = true
	out := s.Render(testTheme())
	assert.Contains(t, out, "↑ 6 more")
	assert.NotContains(t, out, "p1 ")
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

func TestParseCodeBlocks(t *testing.T) {
	text := "Look at this:\n```go\nfunc main() {}\n```\nDone."
	out := stripANSI(ParseCodeBlocks(text, 80))

	assert.Contains(t, out, "Look at this:")
	assert.Contains(t, out, "Done.")
	assert.Contains(t, out, "func main() {}")
	assert.Contains(t, out, "go")
	assert.NotContains(t, out, "```")
}

func TestParseCodeBlocks_Unclosed(t *testing.T) {
	out := stripANSI(ParseCodeBlocks("```\nx := 1", 80))
	assert.Contains(t, out, "x := 1")
	assert.NotContains(t, out, "```")
}

func TestParseInlineCode(t *testing.T) {
	assert.Equal(t, "call main.go now", ParseInlineCode("call `main.go` now"))
	assert.Equal(t, "half `open", ParseInlineCode("half `open"))
}

func TestHighlight_ReturnsCodeText(t *testing.T) {
	out := stripANSI(Highlight("package main", "go"))
	assert.Equal(t, "package main", strings.TrimSpace(out))
	assert.Contains(t, out, "package")
	assert.Contains(t, out, "main")
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager(t *testing.T) {
	m := NewToastManager()
	assert.False(t, m.HasToasts())

	m.AddStatus("one")
	m.AddError("two")
	m.AddSuccess("three")
	m.AddStatus("four")

	toasts := m.Toasts()
	assert.Len(t, toasts, 3, "capped at three")
	assert.Equal(t, "four", toasts[0].Message, "newest first")
	assert.Equal(t, ErrorToastDuration, toasts[2].Duration)

	assert.Equal(t, 3, m.Tick(time.Now()))
	assert.Equal(t, 1, m.Tick(time.Now().Add(DefaultToastDuration+time.Millisecond)), "error toast outlives the others")
	assert.Zero(t, m.Tick(time.Now().Add(ErrorToastDuration+time.Millisecond)))

	m.AddStatus("x")
	m.Clear()
	assert.False(t, m.HasToasts())
}

func TestRenderToasts(t *testing.T) {
	m := NewToastManager()
	assert.Empty(t, m.RenderToasts(testTheme(), 80))

	m.AddError("could not load projects")
	out := m.RenderToasts(testTheme(), 80)
	assert.Contains(t, out, "[X] could not load projects")
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBar(t *testing.T) {
	bar := StatusBar{
		Status: "✅ done (3 files analyzed)",
		Hints:  []KeyHint{{"tab", "focus"}, {"ctrl+c", "quit"}},
		Width:  80,
	}
	out := bar.Render(testTheme())
	assert.Contains(t, out, "✅ done (3 files analyzed)")
	assert.Contains(t, out, "tab focus")
	assert.Contains(t, out, "ctrl+c quit")

	bar.Status = ""
	assert.Contains(t, bar.Render(testTheme()), "Ready")
}

func TestStatusBar_DropsHintsThatDoNotFit(t *testing.T) {
	bar := StatusBar{
		Status: "ok",
		Hints:  []KeyHint{{"tab", "focus"}, {"ctrl+c", "quit"}},
		Width:  14,
	}
	out := bar.Render(testTheme())
	assert.Contains(t, out, "tab focus")
	assert.NotContains(t, out, "quit")
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownRenderer_Disabled(t *testing.T) {
	r := NewMarkdownRenderer(styles.ModeDark, 80, false)
	out := stripANSI(r.Render("see `main.go`"))
	assert.Equal(t, "see main.go", out)
}

func TestMarkdownRenderer_Glamour(t *testing.T) {
	r := NewMarkdownRenderer(styles.ModeDark, 60, true)
	out := stripANSI(r.Render("# Title\n\nSome **bold** text."))
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")

	r.SetWidth(30)
	assert.Equal(t, 30, r.Width())
	assert.Contains(t, stripANSI(r.Render("again")), "again")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the codecraft TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects how the theme picks light or dark colors.
type Mode int

const (
	ModeAuto Mode = iota // follow the terminal background
	ModeDark
	ModeLight
)

// ParseMode converts a config value ("auto", "dark", "light") to a Mode.
// Unknown values are treated as auto.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ModeDark
	case "light":
		return ModeLight
	default:
		return ModeAuto
	}
}

// String returns the config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeDark:
		return "dark"
	case ModeLight:
		return "light"
	default:
		return "auto"
	}
}

// DisableColor switches the default renderer to plain ASCII output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Mode         Mode
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderInfo  lipgloss.Style

	// ==========================================================================
	// FORM
	// ==========================================================================

	Label        lipgloss.Style
	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// ==========================================================================
	// PROJECT SELECT
	// ==========================================================================

	SelectBox         lipgloss.Style
	SelectBoxFocused  lipgloss.Style
	SelectOption      lipgloss.Style
	SelectSelected    lipgloss.Style
	SelectPlaceholder lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	Transcript    lipgloss.Style
	Question      lipgloss.Style
	Answer        lipgloss.Style
	ErrorAnswer   lipgloss.Style
	RoleQuestion  lipgloss.Style
	RoleAnswer    lipgloss.Style
	RoleError     lipgloss.Style
	Timestamp     lipgloss.Style
	EmptyHint     lipgloss.Style
	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style

	// ==========================================================================
	// STATUS AND OVERLAYS
	// ==========================================================================

	Status        lipgloss.Style
	StatusBusy    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	Alert         lipgloss.Style
	AlertTitle    lipgloss.Style
	AlertHint     lipgloss.Style
	Toast         lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style
	Help          lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme(mode Mode) *Theme {
	t := &Theme{
		Mode:         mode,
		ColorProfile: termenv.ColorProfile(),
	}

	switch mode {
	case ModeDark:
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderInfo = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Form
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(14)

	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)

	t.FieldFocused = t.Field.
		BorderForeground(Purple)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#313244"}).
		Padding(0, 2)

	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)

	// Project select
	t.SelectBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)

	t.SelectBoxFocused = t.SelectBox.
		BorderForeground(Purple)

	t.SelectOption = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SelectSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	t.SelectPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Transcript
	t.Transcript = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.Question = lipgloss.NewStyle().
		Foreground(QuestionFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(QuestionBorder).
		PaddingLeft(1)

	t.Answer = lipgloss.NewStyle().
		Foreground(AnswerFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(AnswerBorder).
		PaddingLeft(1)

	t.ErrorAnswer = lipgloss.NewStyle().
		Foreground(ErrorFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ErrorBorder).
		PaddingLeft(1)

	t.RoleQuestion = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.RoleAnswer = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.RoleError = lipgloss.NewStyle().Bold(true).Foreground(Rose)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.EmptyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	// Status and overlays
	t.Status = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusBusy = t.Status.Foreground(Amber)
	t.StatusSuccess = t.Status.Foreground(Emerald)
	t.StatusError = t.Status.Foreground(Rose)

	t.Alert = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.AlertTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.AlertHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Toast = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Help = lipgloss.NewStyle().
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// StatusStyle picks the status line style from the text's leading marker.
func (t *Theme) StatusStyle(text string) lipgloss.Style {
	switch {
	case strings.HasPrefix(text, "✅"):
		return t.StatusSuccess
	case strings.HasPrefix(text, "❌"):
		return t.StatusError
	case strings.HasPrefix(text, "🕷"):
		return t.StatusBusy
	default:
		return t.Status
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)

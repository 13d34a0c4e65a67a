// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen codecraft TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/export"
	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/components"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies the focused widget.
type Focus int

const (
	FocusPath Focus = iota
	FocusName
	FocusProject
	FocusQuestion

	focusCount
)

// String returns the widget name.
func (f Focus) String() string {
	switch f {
	case FocusPath:
		return "path"
	case FocusName:
		return "name"
	case FocusProject:
		return "project"
	case FocusQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// HistorySaver persists transcripts. storage.Store satisfies it.
type HistorySaver interface {
	Save(ctx context.Context, t *model.Transcript) error
}

// Options configures a Model.
type Options struct {
	// ServerURL is shown in the header.
	ServerURL string

	// RenderMarkdown renders answers through glamour.
	RenderMarkdown bool

	// ShowHelp starts with the full help expanded.
	ShowHelp bool

	// History receives a snapshot after each completed exchange. Nil disables autosave.
	History HistorySaver

	// ExportDir and ExportFormat control ctrl+e.
	ExportDir    string
	ExportFormat string

	// InitialProject is selected once the project list arrives, if listed.
	InitialProject string

	// InitialPath prefills the analyze form.
	InitialPath string

	// Resume continues a saved transcript.
	Resume *model.Transcript

	Logger *zap.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the TUI.
type Model struct {
	theme *styles.Theme
	opts  Options
	log   *zap.Logger

	width  int
	height int

	bench   *workbench.Workbench
	backend workbench.Backend

	pathInput     textinput.Model
	nameInput     textinput.Model
	questionInput textinput.Model
	selector      *components.ProjectSelect
	focus         Focus

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap

	alert    components.Alert
	toasts   *components.ToastManager
	markdown *components.MarkdownRenderer

	// Rendered answers keyed by message ID; reset when the width changes.
	renderCache map[string]string

	analyzeCancel *cancelManager
	askCancel     *cancelManager

	quitting bool
}

// New creates the TUI model.
func New(theme *styles.Theme, backend workbench.Backend, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = "md"
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	bench := workbench.New(opts.Logger)
	if opts.Resume != nil {
		bench.Transcript = opts.Resume
	}

	path := newInput("Project path: ", "/path/to/your/project", 1024)
	path.SetValue(opts.InitialPath)
	path.Focus()

	name := newInput("Project name: ", "my-project", 256)
	question := newInput("> ", "Ask a question about the selected project...", 4096)

	vp := viewport.New(80, 10)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	h := help.New()
	h.ShowAll = opts.ShowHelp

	m := Model{
		theme:         theme,
		opts:          opts,
		log:           opts.Logger.Named("tui"),
		bench:         bench,
		backend:       backend,
		pathInput:     path,
		nameInput:     name,
		questionInput: question,
		selector:      components.NewProjectSelect(bench.Projects),
		focus:         FocusPath,
		viewport:      vp,
		spinner:       sp,
		help:          h,
		keyMap:        DefaultKeyMap(),
		toasts:        components.NewToastManager(),
		markdown:      components.NewMarkdownRenderer(theme.Mode, 76, opts.RenderMarkdown),
		renderCache:   make(map[string]string),
		analyzeCancel: newCancelManager(),
		askCancel:     newCancelManager(),
		width:         80,
		height:        24,
	}
	m.syncLayout()
	m.refreshTranscript()
	return m
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// Workbench exposes the session state, used on exit to persist the last project.
func (m Model) Workbench() *workbench.Workbench {
	return m.bench
}

// Focused returns the focused widget.
func (m Model) Focused() Focus {
	return m.focus
}

// AlertVisible reports whether the modal alert is up.
func (m Model) AlertVisible() bool {
	return m.alert.Visible()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init loads the project list and starts the background tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadProjectsCmd(m.backend),
		textinput.Blink,
		components.ToastTickCmd(),
	)
}

// exportOptions builds the options for ctrl+e.
func (m Model) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = m.opts.ExportDir
	if m.theme.Mode == styles.ModeLight {
		opts.Theme = "light"
	}
	return opts
}

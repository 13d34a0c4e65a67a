// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - The "codecraft chat" line-mode REPL.
//
// Command: chat
// Aliases: repl
//
// Examples:
//
//	codecraft chat
//	codecraft chat --project backend
//	printf 'where is main?\n/quit\n' | codecraft chat -p backend
//
// Flags:
//
//	-p, --project NAME   Project selected at start (default: ui.last_project)
//
// Interactive commands:
//
//	/projects            List projects (marks the selected one)
//	/use NAME            Select a project
//	/analyze PATH NAME   Analyze a project and reload the list
//	/export [FORMAT]     Export this session (md, json, html)
//	/clear               Start a new session
//	/help                Show commands
//	/quit                Exit (also Ctrl+D)
//	Ctrl+C               Cancel the request in flight
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/samber/lo"

	"github.com/jeranaias/codecraft-tui/internal/config"
	"github.com/jeranaias/codecraft-tui/internal/export"
	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/components"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
	"github.com/jeranaias/codecraft-tui/internal/util"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// slashCommands are offered by tab completion.
var slashCommands = []string{"/projects", "/use ", "/analyze ", "/export ", "/clear", "/help", "/quit"}

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads one line of input per prompt.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI that keeps its input history in historyFile.
func NewChatCLI(historyFile string, completer liner.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	if completer != nil {
		line.SetCompleter(completer)
	}

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scanReader reads lines from a non-terminal stdin, so chat can be scripted.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) ReadInput(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) Close() {}

// =============================================================================
// SESSION
// =============================================================================

// chatSession is the state of one REPL run.
type chatSession struct {
	env    *Env
	runner *workbench.Runner
	md     *components.MarkdownRenderer
	out    io.Writer

	asked int

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newChatSession(env *Env) *chatSession {
	return &chatSession{
		env:    env,
		runner: workbench.NewRunner(workbench.New(env.Logger), env.Backend),
		md: components.NewMarkdownRenderer(styles.ParseMode(env.Config.UI.Theme), GetTerminalWidth(),
			env.Config.UI.RenderMarkdown && env.Interactive && ColorsEnabled()),
		out: env.Out,
	}
}

// beginRequest derives a request context that Ctrl+C can cancel.
func (s *chatSession) beginRequest(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return reqCtx
}

func (s *chatSession) endRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// interrupt cancels the request in flight. It reports whether there was one.
func (s *chatSession) interrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// prompt shows the selected project.
func (s *chatSession) prompt() string {
	if sel := s.runner.Bench.Projects.Selected(); sel != "" {
		return fmt.Sprintf("codecraft(%s)> ", sel)
	}
	return "codecraft> "
}

// complete is the liner completer.
func (s *chatSession) complete(line string) []string {
	if rest, ok := strings.CutPrefix(line, "/use "); ok {
		return lo.FilterMap(s.runner.Bench.Projects.Names(), func(name string, _ int) (string, bool) {
			return "/use " + name, strings.HasPrefix(name, rest)
		})
	}
	return lo.Filter(slashCommands, func(c string, _ int) bool {
		return strings.HasPrefix(c, line)
	})
}

// handleLine processes one input line. It returns false when the REPL should exit.
func (s *chatSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return s.handleSlash(ctx, line)
	}
	s.ask(ctx, line)
	return true
}

func (s *chatSession) handleSlash(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "/quit", "/q", "/exit":
		return false
	case "/help", "/h", "/?":
		s.printHelp()
	case "/projects", "/p", "/ls":
		s.listProjects(ctx)
	case "/use":
		s.useProject(ctx, rest)
	case "/analyze", "/a":
		path, name, _ := strings.Cut(rest, " ")
		s.analyze(ctx, path, name)
	case "/export", "/e":
		s.export(lo.Ternary(rest == "", "md", rest))
	case "/clear", "/c":
		s.runner.Bench.Transcript = model.NewTranscript(s.runner.Bench.Projects.Selected())
		fmt.Fprintln(s.out, DimStyle.Render("Started a new session."))
	default:
		fmt.Fprintf(s.out, "%s unknown command %s (type /help)\n", ErrorStyle.Render("[ERROR]"), cmd)
	}
	return true
}

func (s *chatSession) ask(ctx context.Context, question string) {
	reqCtx := s.beginRequest(ctx)
	msg, err := s.runner.Ask(reqCtx, util.NormalizeInput(question))
	s.endRequest()

	if workbench.IsAlert(err) {
		fmt.Fprintln(s.out, ErrorStyle.Render(err.Error()))
		fmt.Fprintln(s.out, DimStyle.Render("Select one with /use <project>; /projects lists them."))
		return
	}
	if err != nil && msg == nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
		return
	}

	s.asked++
	if msg.IsError {
		fmt.Fprintln(s.out, AnswerStyle.Render("AI:")+" "+ErrorStyle.Render("Error - "+msg.Content))
	} else {
		fmt.Fprintln(s.out, AnswerStyle.Render("AI:"))
		fmt.Fprintln(s.out, s.md.Render(msg.Content))
	}
	saveTranscript(ctx, s.env, s.runner.Bench.Transcript)
}

func (s *chatSession) listProjects(ctx context.Context) {
	if err := s.runner.LoadProjects(ctx); err != nil {
		fmt.Fprintln(s.out, ErrorStyle.Render(s.runner.Bench.Status()))
		return
	}
	names := s.runner.Bench.Projects.Names()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No projects analyzed yet. Use /analyze <path> <name>.")
		return
	}
	selected := s.runner.Bench.Projects.Selected()
	for _, name := range names {
		fmt.Fprintf(s.out, "%s %s\n", lo.Ternary(name == selected, "*", " "), name)
	}
}

func (s *chatSession) useProject(ctx context.Context, name string) {
	if name == "" {
		if sel := s.runner.Bench.Projects.Selected(); sel != "" {
			fmt.Fprintf(s.out, "Current project: %s\n", sel)
		} else {
			fmt.Fprintln(s.out, "No project selected. Usage: /use <project>")
		}
		return
	}
	if !s.runner.Bench.Projects.Contains(name) {
		// The list may be stale; reload once before giving up.
		_ = s.runner.LoadProjects(ctx)
	}
	if !s.runner.Bench.SelectProject(name) {
		msg := fmt.Sprintf("project not found: %s", name)
		if sug := SuggestFrom(name, s.runner.Bench.Projects.Names()); sug != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", sug)
		}
		fmt.Fprintln(s.out, ErrorStyle.Render(msg))
		return
	}
	fmt.Fprintf(s.out, "Using project %s\n", name)
}

func (s *chatSession) analyze(ctx context.Context, path, name string) {
	reqCtx := s.beginRequest(ctx)
	_, err := s.runner.Analyze(reqCtx, path, name)
	s.endRequest()

	switch {
	case workbench.IsAlert(err):
		fmt.Fprintln(s.out, ErrorStyle.Render(err.Error()))
		fmt.Fprintln(s.out, DimStyle.Render("Usage: /analyze <path> <name>"))
	case err != nil:
		fmt.Fprintln(s.out, ErrorStyle.Render(s.runner.Bench.Status()))
	default:
		fmt.Fprintln(s.out, SuccessStyle.Render(s.runner.Bench.Status()))
	}
}

func (s *chatSession) export(format string) {
	t := s.runner.Bench.Transcript
	if t.IsEmpty() {
		fmt.Fprintln(s.out, "Nothing to export yet.")
		return
	}
	opts := export.DefaultOptions()
	if styles.ParseMode(s.env.Config.UI.Theme) == styles.ModeLight {
		opts.Theme = "light"
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
		return
	}
	path, err := export.ExportToFile(t, exporter, opts)
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
		return
	}
	fmt.Fprintf(s.out, "Exported to %s\n", path)
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out, `Type a question to ask about the selected project.

  /projects            List projects
  /use NAME            Select a project
  /analyze PATH NAME   Analyze a project
  /export [FORMAT]     Export this session (md, json, html)
  /clear               Start a new session
  /quit                Exit (also Ctrl+D)
  Ctrl+C               Cancel the request in flight`)
}

// =============================================================================
// COMMAND
// =============================================================================

func runChat(ctx context.Context, env *Env, args Args) error {
	if env.JSON {
		return NewUsageError("chat is interactive and does not support --json", "codecraft chat [--project <name>]")
	}
	p := args.Parser()
	project := p.FlagOrDefault("project", p.FlagOrDefault("p", env.Config.UI.LastProject))

	s := newChatSession(env)
	if err := s.runner.LoadProjects(ctx); err != nil {
		return NewCommandError("chat", "start", "could not load projects", err)
	}
	if project != "" && !s.runner.Bench.SelectProject(project) {
		env.warnf("project %q is not listed; pick one with /use", project)
	}

	var in lineReader
	if env.Interactive {
		historyFile := filepath.Join(os.TempDir(), "codecraft_chat_history")
		if dir, err := config.ConfigDir(); err == nil {
			historyFile = filepath.Join(dir, "chat_history")
		}
		in = NewChatCLI(historyFile, s.complete)
	} else {
		in = &scanReader{sc: bufio.NewScanner(env.In)}
	}
	defer in.Close()

	if !env.Quiet {
		fmt.Fprintln(env.Out, TitleStyle.Render("🕷️ CodeCraft Context chat"))
		fmt.Fprintln(env.Out, DimStyle.Render(fmt.Sprintf("Server %s. Type a question, or /help for commands.", env.ServerURL)))
	}

	// The first Ctrl+C during a request cancels it. Requests outlive the
	// process-wide interrupt so that Ctrl+C does not end the session.
	reqBase := context.WithoutCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		watchInterrupts(sigChan, done, func() {
			if s.interrupt() {
				fmt.Fprintln(env.Err, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		})
	}()
	defer func() {
		signal.Stop(sigChan)
		close(done)
		<-stopped
	}()

	for {
		line, err := in.ReadInput(s.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return NewCommandError("chat", "read", "input failed", err)
		}
		if !s.handleLine(reqBase, line) {
			break
		}
	}

	rememberProject(env, s.runner.Bench.Projects.Selected())
	if !env.Quiet && s.asked > 0 {
		fmt.Fprintf(env.Out, "%d question(s) asked this session.\n", s.asked)
	}
	return nil
}

// watchInterrupts calls onSignal for each signal received until done is closed.
func watchInterrupts(sig <-chan os.Signal, done <-chan struct{}, onSignal func()) {
	for {
		select {
		case <-done:
			return
		case <-sig:
			onSignal()
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - The "codecraft ask" command.
//
// Command: ask <question> --project NAME
// Aliases: a
//
// Examples:
//
//	codecraft ask "Where is the router configured?" --project backend
//	codecraft ask --raw "List the entry points" -p backend > answer.md
//	echo "Explain main.go" | codecraft ask -p backend
//
// Flags:
//
//	-p, --project NAME   Project to ask about (default: ui.last_project)
//	--raw                Print the answer as returned, without markdown rendering
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/ui/components"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
	"github.com/jeranaias/codecraft-tui/internal/util"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

const askUsage = `codecraft ask "<question>" --project <name>`

// maxStdinQuestion bounds a question read from a pipe.
const maxStdinQuestion = 64 * 1024

// AskData is the JSON payload of "codecraft ask".
type AskData struct {
	Project    string `json:"project"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	DurationMs int64  `json:"duration_ms"`
	SessionID  string `json:"session_id,omitempty"`
}

func runAsk(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	question := p.JoinPositional(0)
	project := p.FlagOrDefault("project", p.FlagOrDefault("p", env.Config.UI.LastProject))
	raw := p.BoolFlag("raw")

	// A piped question is read from stdin when none is given on the command line.
	if strings.TrimSpace(question) == "" && !env.Interactive && env.In != nil {
		data, err := io.ReadAll(io.LimitReader(env.In, maxStdinQuestion))
		if err != nil {
			return NewCommandError("ask", "read", "could not read question from stdin", err)
		}
		question = string(data)
	}
	question = util.NormalizeInput(question)

	runner := workbench.NewRunner(workbench.New(env.Logger), env.Backend)
	if err := selectProject(ctx, env, runner, project); err != nil {
		return err
	}

	start := time.Now()
	msg, err := runner.Ask(ctx, question)
	took := time.Since(start)
	if workbench.IsAlert(err) {
		return err
	}

	sessionID := saveTranscript(ctx, env, runner.Bench.Transcript)
	if err != nil {
		return err
	}

	if env.JSON {
		return env.writeJSON("ask", AskData{
			Project:    runner.Bench.Projects.Selected(),
			Question:   question,
			Answer:     msg.Content,
			DurationMs: took.Milliseconds(),
			SessionID:  sessionID,
		})
	}

	if raw {
		fmt.Fprintln(env.Out, msg.Content)
		return nil
	}
	md := components.NewMarkdownRenderer(styles.ParseMode(env.Config.UI.Theme), GetTerminalWidth(),
		env.Config.UI.RenderMarkdown && env.Interactive && ColorsEnabled())
	fmt.Fprintln(env.Out, md.Render(msg.Content))
	env.infof("%s", DimStyle.Render("answered in "+formatDurationShort(took)))
	return nil
}

// selectProject loads the project list and selects name. An empty name is left
// for the ask flow to reject with its alert; a name the server does not list
// is a not-found error.
func selectProject(ctx context.Context, env *Env, runner *workbench.Runner, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if err := runner.LoadProjects(ctx); err != nil {
		return NewCommandError("ask", "select project", "could not load projects", err)
	}
	if runner.Bench.SelectProject(name) {
		return nil
	}
	if s := SuggestFrom(name, runner.Bench.Projects.Names()); s != "" {
		env.infof("Did you mean %q?", s)
	}
	return NewNotFoundError("project", name)
}

// saveTranscript stores t when history is enabled and returns its ID, or ""
// when nothing was saved. Failures are logged and reported as a warning.
func saveTranscript(ctx context.Context, env *Env, t *model.Transcript) string {
	if !env.Config.History.Enabled || t.IsEmpty() {
		return ""
	}
	store, err := env.history()
	if err == nil {
		err = store.Save(ctx, t)
	}
	if err != nil {
		env.log().Warn("history save failed", zap.Error(err))
		env.warnf("could not save history: %v", err)
		return ""
	}
	return t.ID
}

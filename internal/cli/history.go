// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - The "codecraft history" command.
//
// Command: history [subcommand]
// Aliases: hist
//
// Subcommands:
//
//	list [--limit N]     Recent sessions, newest first (default)
//	show <ref>           Print a saved transcript
//	search <query>       Sessions whose questions or answers mention query
//	delete <ref>         Delete one session
//	clear --confirm      Delete every session
//
// A <ref> is the position shown by "history list" or an ID prefix.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/codecraft-tui/internal/model"
	"github.com/jeranaias/codecraft-tui/internal/storage"
	"github.com/jeranaias/codecraft-tui/internal/util"
)

const historyUsage = "codecraft history [list|show <ref>|search <query>|delete <ref>|clear --confirm]"

// HistoryListData is the JSON payload of "history list" and "history search".
type HistoryListData struct {
	Sessions []storage.SessionMeta `json:"sessions"`
	Count    int                   `json:"count"`
	Total    int                   `json:"total"`
}

// HistoryDeleteData is the JSON payload of "history delete" and "history clear".
type HistoryDeleteData struct {
	Deleted int    `json:"deleted"`
	ID      string `json:"id,omitempty"`
}

func runHistory(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	store, err := env.history()
	if err != nil {
		return NewCommandError("history", "open", "could not open history", err)
	}

	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "list", "ls":
		limit, err := p.FlagIntOrDefault("limit", 20)
		if err != nil {
			return err
		}
		return historyList(ctx, env, store, limit)
	case "show", "view":
		ref := p.Positional(1)
		if ref == "" {
			return ErrMissingArgument("ref", "codecraft history show <ref>")
		}
		return historyShow(ctx, env, store, ref)
	case "search", "find":
		query := p.JoinPositional(1)
		if strings.TrimSpace(query) == "" {
			return ErrMissingArgument("query", "codecraft history search <query>")
		}
		return historySearch(ctx, env, store, query)
	case "delete", "rm":
		ref := p.Positional(1)
		if ref == "" {
			return ErrMissingArgument("ref", "codecraft history delete <ref>")
		}
		return historyDelete(ctx, env, store, ref)
	case "clear":
		return historyClear(ctx, env, store, p.BoolFlag("confirm", "yes", "y"))
	default:
		return NewUsageError("unknown history subcommand: "+sub, historyUsage)
	}
}

func historyList(ctx context.Context, env *Env, store *storage.Store, limit int) error {
	if limit <= 0 {
		return NewValidationErrorWithExample("limit", fmt.Sprint(limit), "must be positive", "--limit 20")
	}
	metas, err := store.List(ctx, limit)
	if err != nil {
		return NewCommandError("history", "list", "could not list sessions", err)
	}
	total, err := store.Count(ctx)
	if err != nil {
		return NewCommandError("history", "list", "could not count sessions", err)
	}
	return writeSessions(env, "history", metas, total, true)
}

func historySearch(ctx context.Context, env *Env, store *storage.Store, query string) error {
	metas, err := store.Search(ctx, query)
	if err != nil {
		return NewCommandError("history", "search", "search failed", err)
	}
	return writeSessions(env, "history", metas, len(metas), false)
}

// writeSessions prints a session table. Positions are only shown for list
// output, where they are valid refs.
func writeSessions(env *Env, command string, metas []storage.SessionMeta, total int, positions bool) error {
	if metas == nil {
		metas = []storage.SessionMeta{}
	}
	if env.JSON {
		return env.writeJSON(command, HistoryListData{Sessions: metas, Count: len(metas), Total: total})
	}
	if len(metas) == 0 {
		fmt.Fprintln(env.Out, "No saved sessions.")
		return nil
	}

	now := env.now()
	table := newTable(env.Out, "#", "ID", "Project", "Title", "Msgs", "Updated")
	for i, m := range metas {
		pos := "-"
		if positions {
			pos = fmt.Sprint(i + 1)
		}
		msgs := fmt.Sprint(m.MessageCount)
		if m.ErrorCount > 0 {
			msgs += fmt.Sprintf(" (%d err)", m.ErrorCount)
		}
		table.Append([]string{pos, m.ShortID(), m.Project, util.TruncateWidth(m.Title, 40), msgs, formatAge(m.UpdatedAt, now)})
	}
	table.Render()
	if total > len(metas) {
		env.infof("%s", DimStyle.Render(fmt.Sprintf("showing %d of %d sessions (use --limit)", len(metas), total)))
	}
	return nil
}

func historyShow(ctx context.Context, env *Env, store *storage.Store, ref string) error {
	t, err := store.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if env.JSON {
		return env.writeJSON("history", t)
	}
	printTranscript(env, t)
	return nil
}

// printTranscript writes t in the labelled form shown by the TUI.
func printTranscript(env *Env, t *model.Transcript) {
	fmt.Fprintln(env.Out, TitleStyle.Render(t.Title()))
	fmt.Fprintln(env.Out, RenderKV("Session", t.ID))
	fmt.Fprintln(env.Out, RenderKV("Project", t.Project))
	fmt.Fprintln(env.Out, RenderKV("Updated", t.UpdatedAt.Format("2006-01-02 15:04")))
	fmt.Fprintln(env.Out, RenderSeparator())
	for _, m := range t.Messages() {
		line := m.Label()
		switch {
		case m.IsError:
			line = ErrorStyle.Render(line)
		case m.IsQuestion():
			line = QuestionStyle.Render("You:") + " " + m.Content
		}
		fmt.Fprintf(env.Out, "%s  %s\n", DimStyle.Render(m.CreatedAt.Format("15:04")), line)
	}
}

func historyDelete(ctx context.Context, env *Env, store *storage.Store, ref string) error {
	t, err := store.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, t.ID); err != nil {
		return err
	}
	if env.JSON {
		return env.writeJSON("history", HistoryDeleteData{Deleted: 1, ID: t.ID})
	}
	fmt.Fprintf(env.Out, "Deleted session %s (%s)\n", t.ID, t.Title())
	return nil
}

func historyClear(ctx context.Context, env *Env, store *storage.Store, confirmed bool) error {
	if !confirmed {
		if !env.Interactive || env.JSON {
			return NewUsageError("refusing to clear history without --confirm", "codecraft history clear --confirm")
		}
		if !promptConfirm(env.In, env.Err, "Delete all saved sessions?") {
			fmt.Fprintln(env.Out, "Cancelled.")
			return nil
		}
	}
	n, err := store.Clear(ctx)
	if err != nil {
		return NewCommandError("history", "clear", "could not clear history", err)
	}
	if env.JSON {
		return env.writeJSON("history", HistoryDeleteData{Deleted: n})
	}
	fmt.Fprintf(env.Out, "Deleted %d session(s)\n", n)
	return nil
}

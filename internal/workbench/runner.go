// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workbench

import (
	"context"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/model"
)

// Runner executes the handler flows synchronously against a Backend.
// It is used by the line-mode front ends; the TUI drives the same Begin/Complete
// transitions asynchronously through tea.Cmd.
type Runner struct {
	Bench   *Workbench
	Backend Backend
}

// NewRunner binds a workbench to a backend.
func NewRunner(bench *Workbench, backend Backend) *Runner {
	return &Runner{Bench: bench, Backend: backend}
}

// LoadProjects fetches the project list and applies it to the selector.
func (r *Runner) LoadProjects(ctx context.Context) error {
	projects, err := r.Backend.ListProjects(ctx)
	r.Bench.ApplyProjects(projects, err)
	return err
}

// Analyze validates the form, runs the analysis and reloads the project list on
// success. The returned error is the alert, busy or request error; the status line
// carries the user-facing result in every case except an alert.
func (r *Runner) Analyze(ctx context.Context, path, name string) (*api.AnalyzeResponse, error) {
	req, err := r.Bench.BeginAnalyze(path, name)
	if err != nil {
		return nil, err
	}

	resp, err := r.Backend.AnalyzeProject(ctx, req.ProjectPath, req.ProjectName)
	if r.Bench.CompleteAnalyze(resp, err) {
		// A failed reload replaces the status line with the load error.
		_ = r.LoadProjects(ctx)
	}
	return resp, err
}

// Ask validates and sends a question. The returned message is the answer node
// appended to the transcript, which is an error node when the request failed.
func (r *Runner) Ask(ctx context.Context, question string) (*model.ChatMessage, error) {
	req, err := r.Bench.BeginAsk(question)
	if err != nil {
		return nil, err
	}

	resp, err := r.Backend.AskQuestion(ctx, req.Question, req.ProjectName)
	return r.Bench.CompleteAsk(resp, err), err
}

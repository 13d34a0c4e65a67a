// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workbench holds the client-side state of a CodeCraft session and the
// transitions of its three handlers: project list loading, analysis and questions.
//
// A Workbench is not safe for concurrent use. The owner serialises access, which in
// practice is the Bubble Tea update loop or the REPL loop. Network calls happen
// outside it: Begin* returns the request to send and Complete* records the result.
package workbench

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/model"
)

// User-facing texts.
const (
	AlertAnalyzeFields = "Please enter both project path and name!"
	AlertAskFields     = "Please select a project and enter a question!"

	StatusAnalyzing = "🕷️ Analyzing project structure..."
)

// =============================================================================
// ERRORS
// =============================================================================

// AlertError is a validation failure that is shown to the user as a modal alert.
// No request is made when one is returned.
type AlertError struct {
	Text string
}

func (e *AlertError) Error() string {
	return e.Text
}

// ErrBusy is returned when the same kind of request is already in flight.
var ErrBusy = errors.New("a request is already in progress")

// IsAlert reports whether err should be displayed as an alert.
func IsAlert(err error) bool {
	var ae *AlertError
	return errors.As(err, &ae)
}

// =============================================================================
// BACKEND
// =============================================================================

// Backend is the subset of the API client the workbench flows need.
type Backend interface {
	ListProjects(ctx context.Context) ([]api.Project, error)
	AnalyzeProject(ctx context.Context, path, name string) (*api.AnalyzeResponse, error)
	AskQuestion(ctx context.Context, question, project string) (*api.AskResponse, error)
}

// =============================================================================
// WORKBENCH
// =============================================================================

// Workbench is the state of one client session.
type Workbench struct {
	Projects   *model.ProjectList
	Transcript *model.Transcript

	status       string
	analyzing    bool
	asking       bool
	scrollToEnd  bool
	projectsInfo map[string]api.Project

	log *zap.Logger
}

// New creates an empty workbench. A nil logger is replaced by a no-op logger.
func New(logger *zap.Logger) *Workbench {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workbench{
		Projects:     model.NewProjectList(),
		Transcript:   model.NewTranscript(""),
		projectsInfo: make(map[string]api.Project),
		log:          logger.Named("workbench"),
	}
}

// Status returns the analyze panel status line ("" when nothing has happened yet).
func (w *Workbench) Status() string {
	return w.status
}

// SetStatus replaces the status line.
func (w *Workbench) SetStatus(s string) {
	w.status = s
}

// Analyzing reports whether an analysis request is in flight.
func (w *Workbench) Analyzing() bool {
	return w.analyzing
}

// Asking reports whether a question is in flight.
func (w *Workbench) Asking() bool {
	return w.asking
}

// Busy reports whether any request is in flight.
func (w *Workbench) Busy() bool {
	return w.analyzing || w.asking
}

// TakeScrollToEnd reports whether the transcript should scroll to its end and
// clears the flag.
func (w *Workbench) TakeScrollToEnd() bool {
	s := w.scrollToEnd
	w.scrollToEnd = false
	return s
}

// SelectProject changes the selected project.
func (w *Workbench) SelectProject(name string) bool {
	return w.Projects.Select(name)
}

// Project returns metadata for a listed project.
func (w *Workbench) Project(name string) (api.Project, bool) {
	p, ok := w.projectsInfo[name]
	return p, ok
}

// =============================================================================
// PROJECT LIST LOADER
// =============================================================================

// ApplyProjects records the result of GET /api/projects.
// On success the selector is repopulated with the placeholder followed by every
// returned name in server order. On failure the previous options are kept and
// the error is surfaced on the status line.
func (w *Workbench) ApplyProjects(projects []api.Project, err error) {
	if err != nil {
		w.status = "❌ Error: could not load projects: " + ErrorText(err)
		w.log.Warn("load projects failed", zap.Error(err))
		return
	}

	w.projectsInfo = lo.SliceToMap(projects, func(p api.Project) (string, api.Project) {
		return p.Name, p
	})
	w.Projects.Replace(lo.Map(projects, func(p api.Project, _ int) string { return p.Name }))
	w.log.Debug("projects loaded", zap.Int("count", len(projects)))
}

// =============================================================================
// ANALYZER TRIGGER
// =============================================================================

// BeginAnalyze validates the analyze form and marks an analysis in flight.
// An *AlertError means nothing should be sent.
func (w *Workbench) BeginAnalyze(path, name string) (api.AnalyzeRequest, error) {
	path = strings.TrimSpace(path)
	name = strings.TrimSpace(name)
	if path == "" || name == "" {
		return api.AnalyzeRequest{}, &AlertError{Text: AlertAnalyzeFields}
	}
	if w.analyzing {
		return api.AnalyzeRequest{}, ErrBusy
	}

	w.analyzing = true
	w.status = StatusAnalyzing
	w.log.Info("analyze started", zap.String("path", path), zap.String("project", name))
	return api.AnalyzeRequest{ProjectPath: path, ProjectName: name}, nil
}

// CompleteAnalyze records the analysis result. It returns true when the project
// list should be reloaded.
func (w *Workbench) CompleteAnalyze(resp *api.AnalyzeResponse, err error) bool {
	w.analyzing = false
	if err != nil {
		w.status = "❌ Error: " + ErrorText(err)
		w.log.Warn("analyze failed", zap.Error(err))
		return false
	}
	if resp == nil {
		resp = &api.AnalyzeResponse{}
	}
	w.status = AnalyzeSuccessText(resp)
	w.log.Info("analyze finished", zap.Int("files", resp.FilesAnalyzed))
	return true
}

// AnalyzeSuccessText renders "✅ <message> (<n> files analyzed)".
func AnalyzeSuccessText(resp *api.AnalyzeResponse) string {
	return fmt.Sprintf("✅ %s (%d files analyzed)", resp.Message, resp.FilesAnalyzed)
}

// =============================================================================
// QUESTION ASKER
// =============================================================================

// BeginAsk validates the question against the current selection. On success the
// question node is appended at once and the request to send is returned.
func (w *Workbench) BeginAsk(question string) (api.AskRequest, error) {
	project := w.Projects.Selected()
	if strings.TrimSpace(question) == "" || project == "" {
		return api.AskRequest{}, &AlertError{Text: AlertAskFields}
	}
	if w.asking {
		return api.AskRequest{}, ErrBusy
	}

	// A transcript belongs to one project; switching starts a new one.
	if w.Transcript.Project != project {
		if w.Transcript.IsEmpty() {
			w.Transcript.Project = project
		} else {
			w.log.Info("new transcript", zap.String("from", w.Transcript.Project), zap.String("project", project))
			w.Transcript = model.NewTranscript(project)
		}
	}
	w.Transcript.AddQuestionFor(project, question)
	w.asking = true
	w.log.Info("question asked", zap.String("project", project), zap.Int("len", len(question)))
	return api.AskRequest{Question: question, ProjectName: project}, nil
}

// CompleteAsk appends the answer node, or an error-labelled answer on failure,
// and requests a scroll to the end of the transcript.
func (w *Workbench) CompleteAsk(resp *api.AskResponse, err error) *model.ChatMessage {
	w.asking = false
	w.scrollToEnd = true

	if err != nil {
		w.log.Warn("question failed", zap.Error(err))
		return w.Transcript.AddError(ErrorText(err))
	}
	answer := ""
	if resp != nil {
		answer = resp.Answer
	}
	return w.Transcript.AddAnswer(answer)
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorText returns the message shown to the user for err.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var ce *api.ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

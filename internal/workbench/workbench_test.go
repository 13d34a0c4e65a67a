// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workbench

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/model"
)

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	projects    []api.Project
	projectsErr error
	analyze     *api.AnalyzeResponse
	analyzeErr  error
	answer      *api.AskResponse
	askErr      error

	listCalls    int
	analyzeCalls int
	askCalls     int
	lastAsk      api.AskRequest
	lastAnalyze  api.AnalyzeRequest
}

func (f *fakeBackend) ListProjects(ctx context.Context) ([]api.Project, error) {
	f.listCalls++
	return f.projects, f.projectsErr
}

func (f *fakeBackend) AnalyzeProject(ctx context.Context, path, name string) (*api.AnalyzeResponse, error) {
	f.analyzeCalls++
	f.lastAnalyze = api.AnalyzeRequest{ProjectPath: path, ProjectName: name}
	return f.analyze, f.analyzeErr
}

func (f *fakeBackend) AskQuestion(ctx context.Context, question, project string) (*api.AskResponse, error) {
	f.askCalls++
	f.lastAsk = api.AskRequest{Question: question, ProjectName: project}
	return f.answer, f.askErr
}

func optionValues(p *model.ProjectList) []string {
	var out []string
	for _, o := range p.Options() {
		out = append(out, o.Value)
	}
	return out
}

// =============================================================================
// PROJECT LIST LOADER
// =============================================================================

func TestLoadProjects(t *testing.T) {
	backend := &fakeBackend{projects: []api.Project{{Name: "beta"}, {Name: "alpha", BrainFile: "b.json"}}}
	r := NewRunner(New(nil), backend)

	require.NoError(t, r.LoadProjects(context.Background()))

	assert.Equal(t, []string{"", "beta", "alpha"}, optionValues(r.Bench.Projects))
	assert.Equal(t, model.PlaceholderLabel, r.Bench.Projects.Options()[0].Label)

	p, ok := r.Bench.Project("alpha")
	require.True(t, ok)
	assert.Equal(t, "b.json", p.BrainFile)
}

func TestLoadProjects_ErrorKeepsOptions(t *testing.T) {
	backend := &fakeBackend{projects: []api.Project{{Name: "alpha"}}}
	r := NewRunner(New(nil), backend)
	require.NoError(t, r.LoadProjects(context.Background()))

	backend.projectsErr = api.ErrNotRunning
	err := r.LoadProjects(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"", "alpha"}, optionValues(r.Bench.Projects))
	assert.Equal(t, "❌ Error: could not load projects: CodeCraft server is not reachable", r.Bench.Status())
}

// =============================================================================
// ANALYZER TRIGGER
// =============================================================================

func TestAnalyze_EmptyFieldsBlockRequest(t *testing.T) {
	tests := []struct {
		name string
		path string
		proj string
	}{
		{"empty path", "", "app"},
		{"empty name", "/src/app", ""},
		{"both empty", "", ""},
		{"whitespace only", "   ", "\t"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{}
			r := NewRunner(New(nil), backend)

			resp, err := r.Analyze(context.Background(), tc.path, tc.proj)
			assert.Nil(t, resp)

			var alert *AlertError
			require.True(t, errors.As(err, &alert), "want alert, got %v", err)
			assert.Equal(t, "Please enter both project path and name!", alert.Text)
			assert.Zero(t, backend.analyzeCalls, "no request may be sent")
			assert.Equal(t, "", r.Bench.Status(), "status is untouched")
		})
	}
}

func TestAnalyze_SuccessRefreshesProjects(t *testing.T) {
	backend := &fakeBackend{
		projects: []api.Project{{Name: "old"}},
		analyze:  &api.AnalyzeResponse{Status: "success", Message: "Project app analyzed successfully!", FilesAnalyzed: 12},
	}
	r := NewRunner(New(nil), backend)
	require.NoError(t, r.LoadProjects(context.Background()))

	backend.projects = []api.Project{{Name: "old"}, {Name: "app"}}
	resp, err := r.Analyze(context.Background(), "/src/app", "app")
	require.NoError(t, err)
	assert.Equal(t, 12, resp.FilesAnalyzed)

	assert.Equal(t, api.AnalyzeRequest{ProjectPath: "/src/app", ProjectName: "app"}, backend.lastAnalyze)
	assert.Equal(t, "✅ Project app analyzed successfully! (12 files analyzed)", r.Bench.Status())
	assert.Equal(t, 2, backend.listCalls)
	assert.Equal(t, []string{"", "old", "app"}, optionValues(r.Bench.Projects))
	assert.False(t, r.Bench.Analyzing())
}

func TestAnalyze_Failure(t *testing.T) {
	backend := &fakeBackend{analyzeErr: &api.ClientError{Type: api.ErrTypeServer, Message: "path does not exist"}}
	r := NewRunner(New(nil), backend)

	_, err := r.Analyze(context.Background(), "/nope", "x")

	require.Error(t, err)
	assert.Equal(t, "❌ Error: path does not exist", r.Bench.Status())
	assert.Zero(t, backend.listCalls, "no reload after a failure")
	assert.False(t, r.Bench.Analyzing())
}

func TestBeginAnalyze_StatusAndBusy(t *testing.T) {
	w := New(nil)

	req, err := w.BeginAnalyze(" /src ", " app ")
	require.NoError(t, err)
	assert.Equal(t, "/src", req.ProjectPath)
	assert.Equal(t, "app", req.ProjectName)
	assert.Equal(t, "🕷️ Analyzing project structure...", w.Status())
	assert.True(t, w.Analyzing())

	_, err = w.BeginAnalyze("/src", "app")
	assert.ErrorIs(t, err, ErrBusy)

	w.CompleteAnalyze(&api.AnalyzeResponse{Message: "ok"}, nil)
	_, err = w.BeginAnalyze("/src", "app")
	assert.NoError(t, err)
}

// =============================================================================
// QUESTION ASKER
// =============================================================================

func TestAsk_BlockedWithoutQuestionOrProject(t *testing.T) {
	tests := []struct {
		name     string
		question string
		selected string
	}{
		{"no project", "what is this?", ""},
		{"no question", "", "app"},
		{"blank question", "  ", "app"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{projects: []api.Project{{Name: "app"}}}
			r := NewRunner(New(nil), backend)
			require.NoError(t, r.LoadProjects(context.Background()))
			r.Bench.SelectProject(tc.selected)

			_, err := r.Ask(context.Background(), tc.question)

			require.True(t, IsAlert(err), "want alert, got %v", err)
			assert.Equal(t, "Please select a project and enter a question!", err.Error())
			assert.Zero(t, backend.askCalls)
			assert.True(t, r.Bench.Transcript.IsEmpty(), "nothing is appended")
		})
	}
}

func TestAsk_SuccessAppendsQuestionThenAnswer(t *testing.T) {
	backend := &fakeBackend{
		projects: []api.Project{{Name: "app"}},
		answer:   &api.AskResponse{Answer: "main.go boots the server"},
	}
	r := NewRunner(New(nil), backend)
	require.NoError(t, r.LoadProjects(context.Background()))
	require.True(t, r.Bench.SelectProject("app"))

	msg, err := r.Ask(context.Background(), "what does main do?")

	require.NoError(t, err)
	assert.Equal(t, api.AskRequest{Question: "what does main do?", ProjectName: "app"}, backend.lastAsk)
	assert.Equal(t, []string{"You: what does main do?", "AI: main.go boots the server"}, r.Bench.Transcript.Labels())
	assert.Equal(t, "AI: main.go boots the server", msg.Label())
	assert.True(t, r.Bench.TakeScrollToEnd())
	assert.False(t, r.Bench.TakeScrollToEnd(), "flag is consumed")
	assert.Equal(t, "app", r.Bench.Transcript.Project)
	assert.Equal(t, "app", r.Bench.Transcript.Items[0].Project)
}

func TestAsk_FailureAppendsErrorNode(t *testing.T) {
	backend := &fakeBackend{
		projects: []api.Project{{Name: "app"}},
		askErr:   api.ErrTimeout,
	}
	r := NewRunner(New(nil), backend)
	require.NoError(t, r.LoadProjects(context.Background()))
	r.Bench.SelectProject("app")

	msg, err := r.Ask(context.Background(), "why?")

	require.Error(t, err)
	assert.Equal(t, []string{"You: why?", "AI: Error - request timed out"}, r.Bench.Transcript.Labels())
	assert.True(t, msg.IsError)
	assert.Equal(t, 1, r.Bench.Transcript.ErrorCount())
	assert.False(t, r.Bench.Asking())
}

func TestBeginAsk_QuestionAppendedImmediately(t *testing.T) {
	w := New(nil)
	w.ApplyProjects([]api.Project{{Name: "app"}}, nil)
	w.SelectProject("app")

	_, err := w.BeginAsk("q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"You: q1"}, w.Transcript.Labels(), "question shows before the answer arrives")
	assert.True(t, w.Asking())

	_, err = w.BeginAsk("q2")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, w.Transcript.Len(), "a busy ask appends nothing")
}

func TestBeginAsk_ProjectSwitchStartsNewTranscript(t *testing.T) {
	w := New(nil)
	w.ApplyProjects([]api.Project{{Name: "app"}, {Name: "backend"}}, nil)
	w.SelectProject("app")

	_, err := w.BeginAsk("q1")
	require.NoError(t, err)
	w.CompleteAsk(&api.AskResponse{Answer: "a1"}, nil)
	first := w.Transcript

	require.True(t, w.SelectProject("backend"))
	_, err = w.BeginAsk("q2")
	require.NoError(t, err)

	assert.NotSame(t, first, w.Transcript)
	assert.NotEqual(t, first.ID, w.Transcript.ID)
	assert.Equal(t, "backend", w.Transcript.Project)
	assert.Equal(t, []string{"You: q2"}, w.Transcript.Labels())
	assert.Equal(t, "app", first.Project)
	assert.Equal(t, []string{"You: q1", "AI: a1"}, first.Labels(), "earlier transcript is untouched")

	w.CompleteAsk(&api.AskResponse{Answer: "a2"}, nil)
	_, err = w.BeginAsk("q3")
	require.NoError(t, err)
	assert.Equal(t, 3, w.Transcript.Len(), "same project keeps appending")
}

func TestCompleteAsk_NilResponse(t *testing.T) {
	w := New(nil)
	msg := w.CompleteAsk(nil, nil)
	assert.Equal(t, "AI: ", msg.Label())
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "", ErrorText(nil))
	assert.Equal(t, "plain", ErrorText(errors.New("plain")))
	assert.Equal(t, "request timed out", ErrorText(api.ErrTimeout))
}

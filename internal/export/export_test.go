// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/codecraft-tui/internal/model"
)

func sampleTranscript() *model.Transcript {
	t := model.NewTranscript("webapp")
	t.AddQuestionFor("webapp", "Where is the router defined?")
	t.AddAnswer("In `router.go`:\n\n```go\nfunc NewRouter() *Router { return &Router{} }\n```\n\nIt is created in main.")
	t.AddQuestionFor("webapp", "And the tests?")
	t.AddError("request timed out")
	return t
}

// =============================================================================
// FORMAT LOOKUP
// =============================================================================

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"md", ".md"},
		{"markdown", ".md"},
		{"JSON", ".json"},
		{".html", ".html"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := ForFormat(tt.format, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, e.FileExtension())
		})
	}

	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"), "frontmatter first")
	assert.Contains(t, md, "project: webapp\n")
	assert.Contains(t, md, "# Where is the router defined?")
	assert.Contains(t, md, "### You <sub>")
	assert.Contains(t, md, "```go\nfunc NewRouter()")
	assert.Contains(t, md, "### AI (error)")
	assert.Contains(t, md, "> **Error** - request timed out")
	assert.Contains(t, md, "- **Failed Answers**: 1")

	// Question order is preserved
	assert.Less(t, strings.Index(md, "Where is the router"), strings.Index(md, "And the tests?"))
}

func TestMarkdownExport_NoMetadata(t *testing.T) {
	opts := &Options{IncludeMetadata: false, IncludeTimestamps: false}
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)

	md := string(out)
	assert.False(t, strings.HasPrefix(md, "---"))
	assert.NotContains(t, md, "<sub>")
	assert.Contains(t, md, "### You\n")
}

func TestExport_EmptyAndNil(t *testing.T) {
	exporters := []Exporter{NewMarkdownExporter(nil), NewHTMLExporter(nil)}
	for _, e := range exporters {
		_, err := e.Export(nil)
		assert.ErrorIs(t, err, ErrNilTranscript)
		_, err = e.Export(model.NewTranscript("x"))
		assert.ErrorIs(t, err, ErrEmptyTranscript)
	}

	// JSON accepts an empty transcript
	_, err := NewJSONExporter(nil).Export(model.NewTranscript("x"))
	assert.NoError(t, err)
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"line\nbreak"`, escapeYAML("line\nbreak"))
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONExport(t *testing.T) {
	tr := sampleTranscript()
	out, err := NewJSONExporter(nil).Export(tr)
	require.NoError(t, err)

	var decoded model.Transcript
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, tr.ID, decoded.ID)
	assert.Equal(t, tr.Labels(), decoded.Labels())
	assert.True(t, decoded.Items[3].IsError)
}

// =============================================================================
// HTML
// =============================================================================

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<body class="dark-theme">`)
	assert.Contains(t, page, `class="message question-message"`)
	assert.Contains(t, page, `class="message answer-message error-message"`)
	assert.Contains(t, page, `<div class="code-lang">go</div>`)
	assert.Contains(t, page, `<code class="inline-code">router.go</code>`)
	assert.Contains(t, page, "Error - request timed out")
	assert.NotContains(t, page, "```")
}

func TestHTMLExport_EscapesContent(t *testing.T) {
	tr := model.NewTranscript("<b>proj</b>")
	tr.AddQuestion("<script>alert('q')</script>")
	tr.AddAnswer("Use <img src=x onerror=alert(1)>\n\n```\"><script>x</script>\n<script>alert(2)</script>\n```")
	tr.AddError("<iframe>")

	out, err := NewHTMLExporter(&Options{IncludeMetadata: true, Theme: "light"}).Export(tr)
	require.NoError(t, err)
	page := string(out)

	assert.NotContains(t, page, "<script>alert")
	assert.NotContains(t, page, "<img src=x")
	assert.NotContains(t, page, "<iframe>")
	assert.NotContains(t, page, "<b>proj</b>")
	assert.Contains(t, page, "&lt;script&gt;alert(&#39;q&#39;)&lt;/script&gt;")
	assert.Contains(t, page, `<body class="light-theme">`)
}

func TestNewHTMLExporter_UnknownThemeIsDark(t *testing.T) {
	e := NewHTMLExporter(&Options{Theme: "neon"})
	assert.Equal(t, "dark", e.options.Theme)
}

// =============================================================================
// FILES
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleTranscript(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "webapp_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Where is the router defined?")
}

func TestExportToFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.json")
	got, err := ExportToFile(sampleTranscript(), NewJSONExporter(nil), &Options{OutputPath: path})
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.FileExists(t, path)
}

func TestExportToFile_ErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := ExportToFile(model.NewTranscript("x"), NewMarkdownExporter(nil), &Options{OutputDir: dir})
	require.Error(t, err)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	tr := model.NewTranscript("my app/v2")
	assert.Equal(t, "my_app-v2_20250304_050607.html", Filename(tr, NewHTMLExporter(nil), now))
	assert.Equal(t, "transcript_20250304_050607.md", Filename(model.NewTranscript(""), NewMarkdownExporter(nil), now))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"a/b\\c:d", "a-b-c-d"},
		{"with space", "with_space"},
		{"ctrl\x01char", "ctrl-char"},
		{"", "transcript"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

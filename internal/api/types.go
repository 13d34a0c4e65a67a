// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the CodeCraft Context backend.
package api

// =============================================================================
// PROJECT TYPES
// =============================================================================

// Project is one analyzed project as reported by GET /api/projects.
type Project struct {
	Name      string `json:"name"`
	BrainFile string `json:"brain_file,omitempty"`
}

// =============================================================================
// ANALYZE TYPES
// =============================================================================

// AnalyzeRequest is the body of POST /api/analyze_project.
type AnalyzeRequest struct {
	ProjectPath string `json:"project_path" validate:"required,max=4096"`
	ProjectName string `json:"project_name" validate:"required,max=255"`
}

// AnalyzeResponse is the result of an analysis run.
type AnalyzeResponse struct {
	Status        string `json:"status,omitempty"`
	Message       string `json:"message"`
	FilesAnalyzed int    `json:"files_analyzed"`
}

// =============================================================================
// QUESTION TYPES
// =============================================================================

// AskRequest is the body of POST /api/ask_question.
type AskRequest struct {
	Question    string `json:"question" validate:"required,max=16384"`
	ProjectName string `json:"project_name" validate:"required,max=255"`
}

// AskResponse holds the answer to a question.
type AskResponse struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
}

// errorBody is the shape of error payloads the server may return.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

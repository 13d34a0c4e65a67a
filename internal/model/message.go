// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for projects and Q&A transcripts.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents which side of an exchange a message belongs to.
type Role string

const (
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the speaker prefix shown in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleQuestion:
		return "You"
	case RoleAnswer:
		return "AI"
	default:
		return string(r)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleQuestion || r == RoleAnswer
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ChatMessage is one node of the transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Project   string    `json:"project,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQuestion creates a question message.
func NewQuestion(content string) *ChatMessage {
	return newMessage(RoleQuestion, content, false)
}

// NewAnswer creates an answer message.
func NewAnswer(content string) *ChatMessage {
	return newMessage(RoleAnswer, content, false)
}

// NewErrorAnswer creates an answer message that reports a failed request.
func NewErrorAnswer(errMsg string) *ChatMessage {
	return newMessage(RoleAnswer, errMsg, true)
}

func newMessage(role Role, content string, isError bool) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		IsError:   isError,
		CreatedAt: time.Now(),
	}
}

// Label renders the message the way the transcript shows it:
// "You: <q>", "AI: <answer>" or "AI: Error - <message>".
func (m *ChatMessage) Label() string {
	if m.Role == RoleAnswer && m.IsError {
		return m.Role.DisplayName() + ": Error - " + m.Content
	}
	return m.Role.DisplayName() + ": " + m.Content
}

// IsQuestion returns true if this is a question node.
func (m *ChatMessage) IsQuestion() bool {
	return m.Role == RoleQuestion
}

// IsAnswer returns true if this is an answer node, error or not.
func (m *ChatMessage) IsAnswer() bool {
	return m.Role == RoleAnswer
}

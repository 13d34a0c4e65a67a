// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for projects and Q&A transcripts.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered record of questions and answers for one session.
// Messages are appended in submission order and never reordered.
type Transcript struct {
	ID        string         `json:"id"`
	Project   string         `json:"project"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Items     []*ChatMessage `json:"messages"`
}

// NewTranscript creates an empty transcript for project.
func NewTranscript(project string) *Transcript {
	now := time.Now()
	return &Transcript{
		ID:        uuid.NewString(),
		Project:   project,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]*ChatMessage, 0),
	}
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg *ChatMessage) *ChatMessage {
	t.Items = append(t.Items, msg)
	t.UpdatedAt = time.Now()
	return msg
}

// AddQuestion creates and appends a question node.
func (t *Transcript) AddQuestion(content string) *ChatMessage {
	return t.Append(NewQuestion(content))
}

// AddQuestionFor appends a question node that records which project it was asked about.
func (t *Transcript) AddQuestionFor(project, content string) *ChatMessage {
	msg := NewQuestion(content)
	msg.Project = project
	return t.Append(msg)
}

// AddAnswer creates and appends an answer node.
func (t *Transcript) AddAnswer(content string) *ChatMessage {
	return t.Append(NewAnswer(content))
}

// AddError creates and appends an error-labelled answer node.
func (t *Transcript) AddError(errMsg string) *ChatMessage {
	return t.Append(NewErrorAnswer(errMsg))
}

// Messages returns a copy of the message slice.
func (t *Transcript) Messages() []*ChatMessage {
	out := make([]*ChatMessage, len(t.Items))
	copy(out, t.Items)
	return out
}

// Clone returns a copy that can be read while the original keeps growing.
// Messages are shared; they are not modified after being appended.
func (t *Transcript) Clone() *Transcript {
	c := *t
	c.Items = t.Messages()
	return &c
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.Items)
}

// IsEmpty returns true if nothing has been asked yet.
func (t *Transcript) IsEmpty() bool {
	return len(t.Items) == 0
}

// Last returns the most recent message, or nil if empty.
func (t *Transcript) Last() *ChatMessage {
	if len(t.Items) == 0 {
		return nil
	}
	return t.Items[len(t.Items)-1]
}

// Clear removes all messages and starts a new transcript identity.
func (t *Transcript) Clear() {
	t.Items = make([]*ChatMessage, 0)
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
}

// Labels returns the rendered label of every message in order.
func (t *Transcript) Labels() []string {
	return lo.Map(t.Items, func(m *ChatMessage, _ int) string {
		return m.Label()
	})
}

// ErrorCount returns how many answers were request failures.
func (t *Transcript) ErrorCount() int {
	return lo.CountBy(t.Items, func(m *ChatMessage) bool { return m.IsError })
}

// =============================================================================
// EXCHANGES
// =============================================================================

// Exchange pairs a question with the answer that followed it.
// Answer is nil while the question is still pending.
type Exchange struct {
	Question *ChatMessage
	Answer   *ChatMessage
}

// Exchanges groups the transcript into question/answer pairs.
// An answer with no preceding question is returned with a nil Question.
func (t *Transcript) Exchanges() []Exchange {
	var out []Exchange
	for _, m := range t.Items {
		switch {
		case m.IsQuestion():
			out = append(out, Exchange{Question: m})
		case len(out) > 0 && out[len(out)-1].Answer == nil && out[len(out)-1].Question != nil:
			out[len(out)-1].Answer = m
		default:
			out = append(out, Exchange{Answer: m})
		}
	}
	return out
}

// Title returns a short display title derived from the first question.
func (t *Transcript) Title() string {
	first, ok := lo.Find(t.Items, func(m *ChatMessage) bool { return m.IsQuestion() })
	if !ok {
		return t.Project
	}
	title := first.Content
	if len([]rune(title)) > 60 {
		title = string([]rune(title)[:57]) + "..."
	}
	return title
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for projects and Q&A transcripts.
//
// This package defines the core domain types shared by the TUI, the line-mode
// REPL and the history store.
//
// # Key Types
//
//   - Transcript: ordered question and answer messages for one session
//   - ChatMessage: a single question or answer with its display label
//   - ProjectList: the project selector options, placeholder first
//   - Role: message role enumeration (question, answer)
//
// # Usage
//
// Record an exchange:
//
//	t := model.NewTranscript("billing-api")
//	t.AddQuestion("Where are invoices created?")
//	t.AddAnswer("In internal/invoice/service.go.")
//	for _, msg := range t.Messages() {
//	    fmt.Println(msg.Label())
//	}
//
// Populate the selector:
//
//	list := model.NewProjectList()
//	list.Replace([]string{"billing-api", "frontend"})
//	list.Select("frontend")
package model

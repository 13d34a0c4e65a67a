// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides transcript export functionality for codecraft.
//
// This package writes a Q&A transcript to a file in one of several formats.
//
// # Key Types
//
//   - Exporter: Main export interface
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - JSON: Machine-readable, the full transcript structure
//   - Markdown: Human-readable with per-message headings
//   - HTML: Self-contained page with embedded CSS
//
// # Usage
//
// Export a transcript:
//
//	exporter, err := export.ForFormat("md", nil)
//	path, err := export.ExportToFile(transcript, exporter, nil)
package export

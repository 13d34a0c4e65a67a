// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the codecraft client.
//
// This package contains helpers used throughout the application for
// display-width aware string handling, input normalization and file writes.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width truncation (CJK and emoji count as 2)
//   - PadRight: pad to a display width
//
// Input:
//   - NormalizeInput: NFC normalization with control characters removed
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long project names safely for display
//	display := util.TruncateWidth(name, 30)
//
//	// Write exports atomically to prevent partial files
//	err := util.AtomicWriteFile(path, data, 0644)
package util

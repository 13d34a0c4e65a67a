// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the codecraft TUI.
//
// Components are stateless renderers or small state holders that the chat
// model composes into its view.
//
// # Components
//
//   - Alert: Blocking modal for validation messages
//   - ProjectSelect: Renders the project options with a leading placeholder
//   - CodeBlock: Syntax-highlighted fenced code for plain answer rendering
//   - ToastManager: Auto-dismissing notifications
//   - StatusBar: Status line with key hints
package components

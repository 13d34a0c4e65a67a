// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the codecraft TUI.
//
// All colors use Lip Gloss AdaptiveColor so they follow the terminal
// background. The theme can also be forced to "dark" or "light".
//
// # Key Types
//
//   - Theme: All styled components for the workbench screen
//   - Mode: auto / dark / light selection
//
// # Usage
//
//	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
//	fmt.Println(theme.Status.Render("ready"))
package styles

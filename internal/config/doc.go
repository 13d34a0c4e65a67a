// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for codecraft.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env loading, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend URL, timeouts and rate limit
//   - UIConfig: Theme and rendering options for the TUI
//   - HistoryConfig: Local transcript history database
//   - LogConfig: Rotating log file settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (--server, --verbose)
//   - Environment variables (CODECRAFT_*), including those set by ./.env
//   - ~/.codecraft/config.toml
//   - ~/.codecraft/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Server.URL
//	timeout := cfg.Server.Timeout()
package config

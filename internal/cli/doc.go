// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for codecraft.
//
// Every command runs against an Env, which carries the output writers, the
// loaded configuration, the backend and a lazily opened history store. Commands
// return errors instead of printing them; the caller displays the error once
// and exits with GetExitCode.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed global flags plus the raw command arguments
//   - ArgParser: Flag and positional access for one command
//   - JSONResponse: The --json output envelope
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	err := cli.Run(ctx, cmd, args, env)
//	cli.DisplayError(os.Stdout, os.Stderr, cmd.String(), err, args.JSON)
//	os.Exit(cli.GetExitCode(err))
//
// # Commands Overview
//
//   - tui: Full-screen interface (default)
//   - projects: List analyzed projects
//   - analyze: Analyze a project, optionally re-running on file changes
//   - ask: Ask one question
//   - chat: Line-mode REPL
//   - history, export: Saved transcripts
//   - config: Configuration management
//
// All commands except tui and chat support the --json flag.
package cli

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and dispatch for codecraft.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdProjects
	CmdAnalyze
	CmdAsk
	CmdChat
	CmdHistory
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name used in JSON output.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdProjects:
		return "projects"
	case CmdAnalyze:
		return "analyze"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdHistory:
		return "history"
	case CmdExport:
		return "export"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server     string
	ConfigPath string
	JSON       bool
	Quiet      bool
	Verbose    bool
	NoColor    bool

	// Name is the command word as typed ("" when none was given).
	Name string

	// Raw holds the arguments after the command word.
	Raw []string
}

// boolFlags lists the command flags that never take a value.
var boolFlags = []string{"watch", "raw", "confirm", "yes", "y", "open"}

// Parser returns an ArgParser over the command arguments.
func (a Args) Parser() *ArgParser {
	return NewArgParser(a.Raw, boolFlags...)
}

const usageText = `codecraft - terminal client for CodeCraft Context

CodeCraft Context analyzes a source tree on the server and answers
questions about it. This client lists analyzed projects, starts new
analyses and asks questions.

Usage:
  codecraft [tui] [--project NAME] [--path DIR] [--resume ID]
                                      Full-screen interface (default)
  codecraft projects                  List analyzed projects
  codecraft analyze <path> --name N   Analyze a project
    --watch                           Re-analyze when files change
  codecraft ask <question> --project N
                                      Ask one question
    --raw                             Print the answer without rendering
  codecraft chat [--project N]        Interactive line mode
  codecraft history [list|show ID|search Q|delete ID|clear --confirm]
                                      Saved transcripts
  codecraft export <ID> [--format md|json|html] [--output FILE]
                                      Export a saved transcript
  codecraft config [show|get K|set K V|path|init]
                                      Configuration
  codecraft version                   Version information
  codecraft help                      This help

Global flags:
  --server URL     Backend URL (default http://127.0.0.1:5000)
  --config PATH    Config file (default ~/.codecraft/config.toml)
  --json           JSON output
  -q, --quiet      Less output
  -v, --verbose    Debug logging
  --no-color       Disable colors

Environment:
  CODECRAFT_SERVER_URL, CODECRAFT_TIMEOUT, CODECRAFT_THEME,
  CODECRAFT_HISTORY, CODECRAFT_LOG_LEVEL, CODECRAFT_HOME, NO_COLOR

History IDs may be a prefix of the session ID or the position shown by
"codecraft history list".
`

// Parse parses command-line arguments and returns the command to execute.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch strings.ToLower(remaining[0]) {
	case "tui", "ui":
		return CmdTUI, args
	case "projects", "ls", "list":
		return CmdProjects, args
	case "analyze", "analyse":
		return CmdAnalyze, args
	case "ask", "a":
		return CmdAsk, args
	case "chat", "repl":
		return CmdChat, args
	case "history", "hist":
		return CmdHistory, args
	case "export":
		return CmdExport, args
	case "config", "cfg":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		// Flags meant for the TUI may come without the command word.
		if strings.HasPrefix(remaining[0], "-") {
			args.Name = ""
			args.Raw = remaining
			return CmdTUI, args
		}
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the command line.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch arg {
		case "--json":
			args.JSON = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--no-color":
			args.NoColor = true
		case "--server", "--config":
			if i+1 < len(argv) {
				i++
				if arg == "--server" {
					args.Server = argv[i]
				} else {
					args.ConfigPath = argv[i]
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--server="):
				args.Server = strings.TrimPrefix(arg, "--server=")
			case strings.HasPrefix(arg, "--config="):
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionData is the JSON payload of "codecraft version".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// CurrentVersion returns the build information.
func CurrentVersion() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	v := CurrentVersion()
	fmt.Fprintf(w, "codecraft %s\n", v.Version)
	fmt.Fprintf(w, "  commit:  %s\n", v.GitCommit)
	fmt.Fprintf(w, "  built:   %s\n", v.BuildDate)
	fmt.Fprintf(w, "  go:      %s (%s)\n", v.GoVersion, v.Platform)
}

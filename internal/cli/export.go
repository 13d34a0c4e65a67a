// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - The "codecraft export" command.
//
// Command: export <ref> [--format md|json|html] [--output FILE] [--open]
//
// Examples:
//
//	codecraft export 1
//	codecraft export 3f2a9c1e --format html --output review.html --open
//	codecraft export 1 --format json --output - | jq .
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/codecraft-tui/internal/export"
	"github.com/jeranaias/codecraft-tui/internal/ui/styles"
)

const exportUsage = "codecraft export <ref> [--format md|json|html] [--output FILE] [--open]"

// ExportData is the JSON payload of "codecraft export".
type ExportData struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

func runExport(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	ref := p.Positional(0)
	if ref == "" {
		return ErrMissingArgument("ref", exportUsage)
	}
	format := strings.ToLower(p.FlagOrDefault("format", p.FlagOrDefault("f", "md")))
	output := p.Flag("output", "o")

	opts := export.DefaultOptions()
	opts.OutputPath = output
	opts.OpenAfterExport = p.BoolFlag("open")
	if styles.ParseMode(env.Config.UI.Theme) == styles.ModeLight {
		opts.Theme = "light"
	}

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationErrorWithExample("format", format, "unsupported export format", "--format "+strings.Join(export.Formats, "|"))
	}

	store, err := env.history()
	if err != nil {
		return NewCommandError("export", "open", "could not open history", err)
	}
	t, err := store.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	// "-" streams the document to stdout for piping.
	if output == "-" {
		data, err := exporter.Export(t)
		if err != nil {
			return NewCommandError("export", "render", format, err)
		}
		_, err = env.Out.Write(data)
		return err
	}

	path, err := export.ExportToFile(t, exporter, opts)
	if err != nil {
		return NewCommandError("export", "write", format, err)
	}
	if env.JSON {
		return env.writeJSON("export", ExportData{ID: t.ID, Format: format, Path: path})
	}
	fmt.Fprintf(env.Out, "Exported %s to %s\n", t.ID, path)
	return nil
}

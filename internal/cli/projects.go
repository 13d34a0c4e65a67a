// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// projects.go - The "codecraft projects" command.
//
// Command: projects
// Aliases: ls, list
//
// Examples:
//
//	codecraft projects
//	codecraft projects --json
package cli

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/jeranaias/codecraft-tui/internal/api"
)

// ProjectsData is the JSON payload of "codecraft projects".
type ProjectsData struct {
	Projects []api.Project `json:"projects"`
	Count    int           `json:"count"`
}

func runProjects(ctx context.Context, env *Env, _ Args) error {
	projects, err := env.Backend.ListProjects(ctx)
	if err != nil {
		return NewCommandError("projects", "list", "could not load projects", err)
	}
	if projects == nil {
		projects = []api.Project{}
	}

	if env.JSON {
		return env.writeJSON("projects", ProjectsData{Projects: projects, Count: len(projects)})
	}

	if len(projects) == 0 {
		fmt.Fprintln(env.Out, "No projects analyzed yet.")
		fmt.Fprintln(env.Out, DimStyle.Render("Run: codecraft analyze <path> --name <name>"))
		return nil
	}

	table := newTable(env.Out, "#", "Name", "Brain file")
	for i, p := range projects {
		table.Append([]string{fmt.Sprint(i + 1), p.Name, lo.Ternary(p.BrainFile == "", "-", p.BrainFile)})
	}
	table.Render()
	return nil
}

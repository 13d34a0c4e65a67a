// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for projects and Q&A transcripts.
package model

import (
	"github.com/samber/lo"
)

// PlaceholderLabel is the text of the first, value-less selector option.
const PlaceholderLabel = "Select a project..."

// Option is one entry of the project selector.
type Option struct {
	Value string
	Label string
}

// IsPlaceholder returns true for the leading "no project" option.
func (o Option) IsPlaceholder() bool {
	return o.Value == ""
}

// ProjectList holds the selector options and the current selection.
// The first option is always the placeholder.
type ProjectList struct {
	names    []string
	selected string
}

// NewProjectList returns a list holding only the placeholder.
func NewProjectList() *ProjectList {
	return &ProjectList{}
}

// Replace repopulates the options with names in the order given. Empty names are
// dropped since they would collide with the placeholder value.
// The selection is kept if it is still present, otherwise it resets to the placeholder.
func (p *ProjectList) Replace(names []string) {
	p.names = lo.Filter(names, func(n string, _ int) bool { return n != "" })
	if !lo.Contains(p.names, p.selected) {
		p.selected = ""
	}
}

// Options returns the placeholder followed by one option per project.
func (p *ProjectList) Options() []Option {
	opts := make([]Option, 0, len(p.names)+1)
	opts = append(opts, Option{Value: "", Label: PlaceholderLabel})
	return append(opts, lo.Map(p.names, func(n string, _ int) Option {
		return Option{Value: n, Label: n}
	})...)
}

// Names returns the project names without the placeholder.
func (p *ProjectList) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of projects, not counting the placeholder.
func (p *ProjectList) Len() int {
	return len(p.names)
}

// Contains reports whether name is one of the options.
func (p *ProjectList) Contains(name string) bool {
	return lo.Contains(p.names, name)
}

// Select sets the selection. An empty or unknown name selects the placeholder.
// Returns false when name was not found.
func (p *ProjectList) Select(name string) bool {
	if name == "" || !p.Contains(name) {
		p.selected = ""
		return name == ""
	}
	p.selected = name
	return true
}

// Selected returns the selected project name, or "" when the placeholder is selected.
func (p *ProjectList) Selected() string {
	return p.selected
}

// SelectedIndex returns the index of the selection within Options().
func (p *ProjectList) SelectedIndex() int {
	if p.selected == "" {
		return 0
	}
	return lo.IndexOf(p.names, p.selected) + 1
}

// Next moves the selection forward, wrapping through the placeholder.
func (p *ProjectList) Next() {
	p.move(1)
}

// Prev moves the selection backward, wrapping through the placeholder.
func (p *ProjectList) Prev() {
	p.move(-1)
}

func (p *ProjectList) move(delta int) {
	n := len(p.names) + 1
	idx := (p.SelectedIndex() + delta + n) % n
	if idx == 0 {
		p.selected = ""
		return
	}
	p.selected = p.names[idx-1]
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the codecraft client.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeInput prepares user-typed text for sending to the backend.
// It applies NFC so visually identical input compares equal, drops control
// characters other than newline and tab, and trims surrounding whitespace.
func NormalizeInput(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// NormalizeName is NormalizeInput for single-line identifiers such as project
// names: interior runs of whitespace collapse to one space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(NormalizeInput(s)), " ")
}

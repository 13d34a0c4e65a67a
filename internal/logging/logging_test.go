// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNew_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "codecraft.log")

	logger, closeFn, err := New(Options{Path: path, Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("projects loaded", zap.Int("count", 3))
	require.NoError(t, closeFn())

	entries := readEntries(t, path)
	require.Len(t, entries, 1, "debug is below the configured level")
	assert.Equal(t, "projects loaded", entries[0]["msg"])
	assert.Equal(t, float64(3), entries[0]["count"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestNew_DebugLevelAndTimed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closeFn, err := New(Options{Path: path, Level: "debug"})
	require.NoError(t, err)

	Timed(logger, "analyze", zap.String("project", "app"))()
	require.NoError(t, closeFn())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "analyze", entries[0]["op"])
	assert.Equal(t, "app", entries[0]["project"])
	assert.Contains(t, entries[0], "took")
}

func TestNew_RequiresPath(t *testing.T) {
	_, _, err := New(Options{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{"", zapcore.InfoLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

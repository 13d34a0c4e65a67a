// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	for _, k := range []string{"CODECRAFT_SERVER_URL", "CODECRAFT_TIMEOUT", "CODECRAFT_THEME", "CODECRAFT_HISTORY", "CODECRAFT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	// .env is read from the working directory
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.URL != "http://127.0.0.1:5000" {
		t.Errorf("Server.URL = %q, want http://127.0.0.1:5000", cfg.Server.URL)
	}
	if cfg.Server.Timeout().Minutes() != 2 {
		t.Errorf("Server.Timeout() = %v, want 2m", cfg.Server.Timeout())
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{Server: ServerConfig{URL: "http://host:9000/"}}
	cfg.SetDefaults()

	assert.Equal(t, "http://host:9000", cfg.Server.URL)
	assert.Equal(t, 120, cfg.Server.TimeoutSecs)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2000, cfg.Watch.DebounceMs)
}

// =============================================================================
// LOAD
// =============================================================================

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Server.URL, cfg.Server.URL)
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	content := `
[server]
url = "http://analysis.local:5001"
timeout_secs = 30

[history]
enabled = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://analysis.local:5001", cfg.Server.URL)
	assert.Equal(t, 30, cfg.Server.TimeoutSecs)
	assert.Equal(t, 600, cfg.Server.AnalyzeTimeoutSecs, "unset keys keep defaults")
	assert.False(t, cfg.History.Enabled)
	assert.True(t, cfg.UI.ShowHelp)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"ui":{"theme":"light"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestLoad_BrokenFileReturnsDefaultsAndError(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[server\nurl="), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Server.URL, cfg.Server.URL)
}

func TestLoad_DotEnvAndEnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CODECRAFT_THEME=dark\n"), 0600))
	t.Setenv("CODECRAFT_SERVER_URL", "https://codecraft.example.com")
	t.Setenv("CODECRAFT_HISTORY", "false")
	// godotenv does not override variables that are already set, including empty ones
	require.NoError(t, os.Unsetenv("CODECRAFT_THEME"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://codecraft.example.com", cfg.Server.URL)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.False(t, cfg.History.Enabled)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[ui]
theme = "neon"`), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.theme")
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.URL = "http://10.0.0.5:5000"
	cfg.Watch.Ignore = []string{"target"}
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# codecraft configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", loaded.Server.URL)
	assert.Equal(t, []string{"target"}, loaded.Watch.Ignore)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Server.URL = "localhost:5000" }, "server.url"},
		{"ftp url", func(c *Config) { c.Server.URL = "ftp://host" }, "server.url"},
		{"negative timeout", func(c *Config) { c.Server.TimeoutSecs = -1 }, "server.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "want ValidateErrors, got %v", err)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("server.url", "http://other:1"))
	require.NoError(t, cfg.Set("server.timeout_secs", "15"))
	require.NoError(t, cfg.Set("history.enabled", "no"))
	require.NoError(t, cfg.Set("server.rate_limit", "2.5"))
	require.NoError(t, cfg.Set("watch.ignore", "target, out"))

	v, err := cfg.Get("server.url")
	require.NoError(t, err)
	assert.Equal(t, "http://other:1", v)
	assert.Equal(t, 15, cfg.Server.TimeoutSecs)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, []string{"target", "out"}, cfg.Watch.Ignore)

	_, err = cfg.Get("server.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("server.url.host", "x"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	cfg.Watch.Ignore = []string{"a"}

	clone := cfg.Clone()
	clone.Watch.Ignore[0] = "b"

	assert.Equal(t, "a", cfg.Watch.Ignore[0])
}

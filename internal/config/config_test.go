// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearKeyEnv blanks both key variables for the duration of the test.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvLegacyAPIKey, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.Gemini.Transport != TransportREST {
		t.Errorf("Gemini.Transport = %q, want rest", cfg.Gemini.Transport)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", cfg.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	if err := cfg.RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("RequireAPIKey() = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearKeyEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Gemini, cfg.Gemini)
}

func TestLoad_FileValues(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[gemini]
api_key = "from-file"
model = "gemini-2.0-pro"
transport = "SDK"

[ui]
theme = "light"
word_wrap = 100
show_timestamps = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-pro", cfg.Gemini.Model)
	assert.Equal(t, TransportSDK, cfg.Gemini.Transport, "transport is lower-cased")
	assert.Equal(t, 60, cfg.Gemini.TimeoutSecs, "unset fields keep defaults")
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 100, cfg.UI.WordWrap)
	assert.True(t, cfg.UI.ShowTimestamps)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[gemini]\nmodle = \"typo\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.modle")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[gemini]\ntransport = \"grpc\"\n[ui]\ntheme = \"neon\"\n")

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		legacy string
		want   string
	}{
		{"primary", "primary-key", "", "primary-key"},
		{"legacy only", "", "legacy-key", "legacy-key"},
		{"primary wins", "primary-key", "legacy-key", "primary-key"},
		{"none keeps file", "", "", "file-key"},
		{"whitespace ignored", "   ", "", "file-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, tt.key)
			t.Setenv(EnvLegacyAPIKey, tt.legacy)

			cfg := Default()
			cfg.Gemini.APIKey = "file-key"
			cfg.ApplyEnvOverrides()
			if cfg.Gemini.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.Gemini.APIKey, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const fresh = "LEGALAID_DOTENV_FRESH"
	const kept = "LEGALAID_DOTENV_KEPT"
	os.Unsetenv(fresh)
	t.Cleanup(func() { os.Unsetenv(fresh) })
	t.Setenv(kept, "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, fresh+"=from-file\n"+kept+"=from-file\n")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(fresh))
	assert.Equal(t, "from-env", os.Getenv(kept), "existing environment wins")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"model with slash", func(c *Config) { c.Gemini.Model = "models/x" }, "gemini.model"},
		{"bad scheme", func(c *Config) { c.Gemini.BaseURL = "ftp://example.com" }, "gemini.base_url"},
		{"no host", func(c *Config) { c.Gemini.BaseURL = "https://" }, "gemini.base_url"},
		{"transport", func(c *Config) { c.Gemini.Transport = "grpc" }, "gemini.transport"},
		{"timeout low", func(c *Config) { c.Gemini.TimeoutSecs = -1 }, "gemini.timeout_secs"},
		{"timeout high", func(c *Config) { c.Gemini.TimeoutSecs = 601 }, "gemini.timeout_secs"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"word wrap", func(c *Config) { c.UI.WordWrap = 5 }, "ui.word_wrap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

// =============================================================================
// SAVE AND DISPLAY
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Gemini.Model = "gemini-custom"
	cfg.UI.Theme = "dark"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", loaded.Gemini.Model)
	assert.Equal(t, "dark", loaded.UI.Theme)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# legalaid configuration file"))
}

func TestConfig_StringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "AIza-super-secret"

	s := cfg.String()
	assert.NotContains(t, s, "AIza-super-secret")
	assert.Contains(t, s, "[REDACTED]")
	assert.Equal(t, "AIza-super-secret", cfg.Gemini.APIKey, "original untouched")
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[gemini]\nmodel = \"first\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }, nil))

	writeFile(t, path, "[gemini]\nmodel = \"second\"\n")

	select {
	case cfg := <-changes:
		assert.Equal(t, "second", cfg.Gemini.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestWatch_ReportsInvalidConfig(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	require.NoError(t, Watch(ctx, path, func(*Config) { t.Error("invalid config delivered") }, func(err error) { errs <- err }))

	writeFile(t, path, "[ui]\ntheme = \"neon\"\n")

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "ui.theme")
	case <-time.After(5 * time.Second):
		t.Fatal("no error within 5s")
	}
}

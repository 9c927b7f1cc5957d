// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/legalaid-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete legalaid configuration.
type Config struct {
	Version string `toml:"version"`

	Gemini  GeminiConfig  `toml:"gemini"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

// GeminiConfig contains the generateContent connection settings.
type GeminiConfig struct {
	// APIKey is normally supplied through GEMINI_API_KEY instead.
	APIKey string `toml:"api_key"`
	// Model is the model name placed in the request path.
	Model string `toml:"model"`
	// BaseURL is the API host, without the version segment.
	BaseURL string `toml:"base_url"`
	// Transport selects the client: "rest" or "sdk".
	Transport string `toml:"transport"`
	// TimeoutSecs is the HTTP client timeout for one request.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme"`
	// WordWrap caps the markdown width. 0 follows the terminal.
	WordWrap int `toml:"word_wrap"`
	// ShowTimestamps prints the time next to each message.
	ShowTimestamps bool `toml:"show_timestamps"`
	// Plain forces the line-oriented REPL even on a terminal.
	Plain bool `toml:"plain"`
}

// LoggingConfig contains diagnostic log settings.
type LoggingConfig struct {
	// File receives log lines. Empty discards them.
	File string `toml:"file"`
}

// Transport names.
const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvLegacyAPIKey = "VITE_API_KEY"
)

// ErrMissingAPIKey is returned by RequireAPIKey.
var ErrMissingAPIKey = errors.New("Gemini API key not set: export " + EnvAPIKey + " or set [gemini] api_key in the config file")

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			BaseURL:     "https://generativelanguage.googleapis.com",
			Transport:   TransportREST,
			TimeoutSecs: 60,
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 0,
		},
	}
}

// SetDefaults fills empty fields with built-in values.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = d.Gemini.BaseURL
	}
	if c.Gemini.Transport == "" {
		c.Gemini.Transport = d.Gemini.Transport
	}
	if c.Gemini.TimeoutSecs == 0 {
		c.Gemini.TimeoutSecs = d.Gemini.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	c.Gemini.Transport = strings.ToLower(c.Gemini.Transport)
	c.UI.Theme = strings.ToLower(c.UI.Theme)
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the legalaid configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".legalaid"), nil
}

// ConfigPath returns the default path of the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolvePath returns path, or the default path when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ConfigPath()
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none are
// given) into the process environment. Variables already set are kept.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the config file at path (the default path when empty), then
// applies environment overrides, defaults and validation. A missing file
// yields the built-in defaults.
func Load(path string) (*Config, error) {
	path, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", statErr)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg.
// Unknown keys are rejected so typos surface.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Save writes cfg to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# legalaid configuration file")
	fmt.Fprintln(&buf, "# The API key is best kept in the "+EnvAPIKey+" environment variable.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides:
//   - GEMINI_API_KEY: overrides gemini.api_key
//   - VITE_API_KEY: used when GEMINI_API_KEY is unset
func (c *Config) ApplyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		c.Gemini.APIKey = key
		return
	}
	if key := strings.TrimSpace(os.Getenv(EnvLegacyAPIKey)); key != "" {
		c.Gemini.APIKey = key
	}
}

// RequireAPIKey fails when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
// The API key is not checked here; see RequireAPIKey.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if m := c.Gemini.Model; strings.ContainsAny(m, "/ \t?#") {
		errs = append(errs, ValidationError{
			Field:   "gemini.model",
			Message: fmt.Sprintf("invalid model name %q", m),
		})
	}

	if u, err := url.Parse(c.Gemini.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "gemini.base_url",
			Message: fmt.Sprintf("invalid URL %q, must be http(s)://host", c.Gemini.BaseURL),
		})
	}

	switch c.Gemini.Transport {
	case TransportREST, TransportSDK:
	default:
		errs = append(errs, ValidationError{
			Field:   "gemini.transport",
			Message: fmt.Sprintf("invalid transport '%s', must be one of: rest, sdk", c.Gemini.Transport),
		})
	}

	if c.Gemini.TimeoutSecs < 1 || c.Gemini.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "gemini.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Gemini.TimeoutSecs),
		})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if c.UI.WordWrap != 0 && (c.UI.WordWrap < 20 || c.UI.WordWrap > 400) {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("must be 0 or between 20 and 400, got %d", c.UI.WordWrap),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// String renders the config as TOML with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Gemini.APIKey != "" {
		safe.Gemini.APIKey = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

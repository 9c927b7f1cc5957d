// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation for legalaid.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)   Display the effective configuration, key redacted
//	init [--force]   Write a default config file
//	path             Show the configuration file path
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/legalaid-tui/internal/config"
	"github.com/jeranaias/legalaid-tui/internal/gemini"
)

// ErrConfigExists is returned by config init when the file is already there.
var ErrConfigExists = errors.New("config file already exists (use --force to overwrite)")

// HandleConfig runs a config subcommand, writing results to out and notes
// to errOut.
func HandleConfig(args Args, out, errOut io.Writer) error {
	path, err := config.ResolvePath(args.ConfigPath)
	if err != nil {
		return &CommandError{Command: "config", Action: args.Subcommand, Err: err}
	}

	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(path, out)
	case "init":
		return handleConfigInit(path, args.Force, out)
	case "path":
		return handleConfigPath(path, out, errOut)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q", args.Subcommand)}
	}
}

func handleConfigShow(path string, out io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return &CommandError{Command: "config", Action: "show", Err: err}
	}

	fmt.Fprintln(out, TitleStyle.Render("legalaid configuration"))
	fmt.Fprintln(out, DimStyle.Render("# "+path))
	fmt.Fprintln(out)
	fmt.Fprint(out, cfg.String())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "API key: %s\n", describeKey(cfg.Gemini.APIKey))
	return nil
}

func handleConfigInit(path string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return &CommandError{Command: "config", Action: "init", Err: ErrConfigExists}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &CommandError{Command: "config", Action: "init", Err: err}
	}

	if err := config.Save(config.Default(), path); err != nil {
		return &CommandError{Command: "config", Action: "init", Err: err}
	}
	fmt.Fprintf(out, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	fmt.Fprintf(out, "Set %s in your environment or a .env file to add your key.\n", config.EnvAPIKey)
	return nil
}

func handleConfigPath(path string, out, errOut io.Writer) error {
	fmt.Fprintln(out, path)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(errOut, "%s file does not exist (run 'legalaid config init')\n", WarningStyle.Render("Note:"))
	}
	return nil
}

// describeKey reports whether a key is set without revealing it.
func describeKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "sha256:" + gemini.KeyFingerprint(key) + "..."
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for legalaid.
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
	CmdChat
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
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
	ConfigPath string
	Model      string
	Plain      bool

	// Command-specific
	Subcommand string
	Force      bool // config init: overwrite an existing file

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `legalaid - Legal Aid Agent for the terminal

Ask legal questions and get answers grounded in Indian law, including where
to report an incident, which documents you need and whom to contact.

Usage:
  legalaid [flags]                 Start the chat TUI (default)
  legalaid chat [flags]            Line-oriented chat
  legalaid config init [--force]   Write a default config file
  legalaid config show             Show the effective configuration
  legalaid config path             Print the config file path
  legalaid version                 Show version information
  legalaid help                    Show this help

Flags:
  --config PATH   Config file (default ~/.legalaid/config.toml)
  --model NAME    Gemini model to use for this run
  --plain         Use the line-oriented chat instead of the TUI
  -h, --help      Show this help
  -v, --version   Show version information

Environment:
  GEMINI_API_KEY  Gemini API key (VITE_API_KEY is also accepted)

A .env file in the working directory is read at startup.

TUI keys:
  Enter           Send the question
  Alt+Enter       Insert a newline
  Ctrl+Y          Copy the last reply
  PgUp/PgDn       Scroll the conversation
  F1              Toggle full help
  Ctrl+C          Quit

Version: %s
`

// PrintUsage writes the usage/help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "legalaid version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments (without the program name) and
// returns the command and its args.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		if args.Plain {
			return CmdChat, args, nil
		}
		return CmdTUI, args, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		if args.Plain {
			return CmdChat, args, nil
		}
		return CmdTUI, args, nil

	case "chat":
		return CmdChat, args, nil

	case "config":
		if err := parseConfigArgs(&args, remaining); err != nil {
			return CmdConfig, args, err
		}
		return CmdConfig, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, &UsageError{Message: fmt.Sprintf("unknown command %q", cmd)}
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// --help and --version short-circuit to their commands.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch arg {
		case "-h", "--help":
			return []string{"help"}, args, nil
		case "-v", "--version":
			return []string{"version"}, args, nil
		case "--plain":
			args.Plain = true
		case "--force", "-f":
			args.Force = true
		case "--model", "--config":
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "-") {
				return nil, args, &UsageError{Message: arg + " requires a value"}
			}
			i++
			setValueFlag(&args, arg, argv[i])
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && (name == "--model" || name == "--config") {
				if value == "" {
					return nil, args, &UsageError{Message: name + " requires a value"}
				}
				setValueFlag(&args, name, value)
				continue
			}
			if strings.HasPrefix(arg, "-") {
				return nil, args, &UsageError{Message: fmt.Sprintf("unknown flag %q", arg)}
			}
			remaining = append(remaining, arg)
		}
	}

	return remaining, args, nil
}

func setValueFlag(args *Args, name, value string) {
	switch name {
	case "--model":
		args.Model = value
	case "--config":
		args.ConfigPath = value
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) error {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return nil
	}
	args.Subcommand = strings.ToLower(remaining[0])
	switch args.Subcommand {
	case "init", "show", "path":
	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q (want init, show or path)", remaining[0])}
	}
	if len(remaining) > 1 {
		return &UsageError{Message: fmt.Sprintf("unexpected argument %q", remaining[1])}
	}
	return nil
}

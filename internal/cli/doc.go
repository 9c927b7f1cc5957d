// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI front ends for
// legalaid.
//
// # Commands
//
//	legalaid                 Start the chat TUI (default)
//	legalaid chat            Line-oriented chat (also used when stdout is not a TTY)
//	legalaid config init     Write a default config file
//	legalaid config show     Print the effective config with the key redacted
//	legalaid config path     Print the config file path
//	legalaid version         Print version information
//
// # Global Flags
//
//	--config PATH   Config file (default ~/.legalaid/config.toml)
//	--model NAME    Gemini model for this run
//	--plain         Use the line-oriented chat instead of the TUI
package cli

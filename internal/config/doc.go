// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for legalaid.
//
// Settings come from, in increasing precedence:
//   - built-in defaults
//   - ~/.legalaid/config.toml (or the path given with --config)
//   - a .env file in the working directory (see LoadDotEnv)
//   - the GEMINI_API_KEY environment variable (VITE_API_KEY as a fallback)
//
// Example config.toml:
//
//	[gemini]
//	model = "gemini-2.5-flash"
//	transport = "rest"
//	timeout_secs = 60
//
//	[ui]
//	theme = "auto"
//	word_wrap = 100
//
//	[logging]
//	file = "/tmp/legalaid.log"
//
// Watch reloads the file when it changes so the model name can be switched
// without restarting.
package config

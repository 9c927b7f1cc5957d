// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error display and exit codes for legalaid commands.
//
// Commands return errors; main decides how to display them and which exit
// code to use.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/legalaid-tui/internal/config"
	"github.com/jeranaias/legalaid-tui/internal/gemini"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the API key was rejected
	ExitAuthError = 4
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "config"
	Action  string // e.g. "init"
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w in a consistent format, with a hint for
// errors the user can fix.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintln(w, DimStyle.Render("Run 'legalaid --help' for usage."))
	case errors.Is(err, config.ErrMissingAPIKey):
		fmt.Fprintln(w, DimStyle.Render("Get a key at https://aistudio.google.com/apikey"))
	}
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	var verrs config.ValidateErrors
	if errors.Is(err, config.ErrMissingAPIKey) || errors.As(err, &verrs) {
		return ExitConfigError
	}

	if errors.Is(err, gemini.ErrAuthFailed) {
		return ExitAuthError
	}

	return ExitGeneralError
}

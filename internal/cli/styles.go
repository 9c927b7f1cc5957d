// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for the non-TUI output of legalaid.
//
// Colors are disabled for non-TTY output and when NO_COLOR is set.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/legalaid-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle is used for the banner title
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Slate)

	// PromptStyle is used for the input prompt
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Sand)

	// AssistantStyle labels replies
	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Slate)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"github.com/jeranaias/legalaid-tui/internal/gemini"
	"github.com/jeranaias/legalaid-tui/internal/model"
)

// wireRole maps a transcript role to the role generateContent expects.
func wireRole(r model.Role) string {
	if r == model.RoleUser {
		return gemini.RoleUser
	}
	return gemini.RoleModel
}

// BuildContents assembles the request: the system prompt as a "model" entry,
// then every prior message in order, then the new user input.
// history must not already contain input.
func BuildContents(systemPrompt string, history []model.Message, input string) []gemini.Content {
	contents := make([]gemini.Content, 0, len(history)+2)
	contents = append(contents, gemini.NewTextContent(gemini.RoleModel, systemPrompt))
	for _, m := range history {
		contents = append(contents, gemini.NewTextContent(wireRole(m.Role), m.Content))
	}
	contents = append(contents, gemini.NewTextContent(gemini.RoleUser, input))
	return contents
}

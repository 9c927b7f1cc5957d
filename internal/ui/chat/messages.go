// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
)

// MessageAppendedMsg is delivered for every transcript append.
type MessageAppendedMsg struct {
	Message model.Message
}

// StateChangedMsg carries an orchestrator state transition.
type StateChangedMsg struct {
	State orchestrator.State
}

// TurnSettledMsg is delivered when a turn's reply has been appended and the
// session is idle again.
type TurnSettledMsg struct {
	Reply model.Message
}

// ModelChangedMsg tells the screen that the configured model was switched.
type ModelChangedMsg struct {
	Name string
}

// CopyResultMsg reports the outcome of a clipboard copy.
type CopyResultMsg struct {
	Chars int
	Err   error
}

// statusClearMsg hides a transient notice if it is still the current one.
type statusClearMsg struct {
	seq int
}

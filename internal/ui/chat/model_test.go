// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/legalaid-tui/internal/gemini"
	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
	"github.com/jeranaias/legalaid-tui/internal/ui/styles"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type stubGenerator func(ctx context.Context, contents []gemini.Content) (*gemini.GenerateContentResponse, error)

func (f stubGenerator) GenerateContent(ctx context.Context, contents []gemini.Content) (*gemini.GenerateContentResponse, error) {
	return f(ctx, contents)
}

func answer(text string) stubGenerator {
	return func(context.Context, []gemini.Content) (*gemini.GenerateContentResponse, error) {
		return &gemini.GenerateContentResponse{
			Candidates: []gemini.Candidate{{Content: &gemini.Content{Parts: []gemini.Part{{Text: text}}}}},
		}, nil
	}
}

func newTestModel(t *testing.T, gen orchestrator.Generator) Model {
	t.Helper()
	orch := orchestrator.New(model.NewTranscript(), gen)
	m := New(Options{
		Orchestrator: orch,
		Theme:        styles.NewTheme("dark"),
		ModelName:    "gemini-test",
	})
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func pressEnter(m Model) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

// settle runs the commands returned by a submit and returns the
// TurnSettledMsg among their results.
func settle(t *testing.T, cmd tea.Cmd) TurnSettledMsg {
	t.Helper()
	require.NotNil(t, cmd)

	var pending []tea.Cmd
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		pending = msg
	case TurnSettledMsg:
		return msg
	}
	for _, c := range pending {
		if c == nil {
			continue
		}
		if settled, ok := c().(TurnSettledMsg); ok {
			return settled
		}
	}
	t.Fatal("no TurnSettledMsg produced")
	return TurnSettledMsg{}
}

// =============================================================================
// RENDERING
// =============================================================================

func TestModel_ViewBeforeResize(t *testing.T) {
	orch := orchestrator.New(model.NewTranscript(), answer("x"))
	m := New(Options{Orchestrator: orch, Theme: styles.NewTheme("dark")})
	defer m.Close()

	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_EmptyState(t *testing.T) {
	m := newTestModel(t, answer("x"))

	view := m.View()
	assert.Contains(t, view, EmptyStateText)
	assert.Contains(t, view, HeaderTitle)
	assert.Contains(t, view, "gemini-test")
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestModel_SubmitAppendsAndClearsInput(t *testing.T) {
	m := newTestModel(t, answer("Visit the nearest police station."))
	m = typeText(m, "Someone stole my phone")

	m, cmd := pressEnter(m)
	assert.Equal(t, "", m.input.Value())
	assert.True(t, m.orch.Busy())

	msgs := m.transcript.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "Someone stole my phone", msgs[0].Content)

	settled := settle(t, cmd)
	assert.Equal(t, "Visit the nearest police station.", settled.Reply.Content)

	updated, _ := m.Update(settled)
	m = updated.(Model)
	assert.False(t, m.orch.Busy())
	assert.Equal(t, 2, m.transcript.Len())
	assert.NotContains(t, m.View(), EmptyStateText)
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m := newTestModel(t, answer("x"))
	m = typeText(m, "   ")

	m, _ = pressEnter(m)
	assert.Equal(t, 0, m.transcript.Len())
	assert.False(t, m.orch.Busy())
}

func TestModel_SubmitRefusedWhileAwaiting(t *testing.T) {
	release := make(chan struct{})
	gen := stubGenerator(func(ctx context.Context, _ []gemini.Content) (*gemini.GenerateContentResponse, error) {
		<-release
		return nil, errors.New("released")
	})
	defer close(release)

	m := newTestModel(t, gen)
	m = typeText(m, "first")
	m, _ = pressEnter(m)
	require.True(t, m.orch.Busy())

	m = typeText(m, "second")
	m, _ = pressEnter(m)

	assert.Equal(t, 1, m.transcript.Len())
	assert.Equal(t, "second", m.input.Value(), "typed text is kept while waiting")
	assert.Contains(t, m.statusMsg, "wait")
}

func TestModel_ErrorReplySetsStatus(t *testing.T) {
	gen := stubGenerator(func(context.Context, []gemini.Content) (*gemini.GenerateContentResponse, error) {
		return nil, errors.New("boom")
	})
	m := newTestModel(t, gen)
	m = typeText(m, "hello")

	m, cmd := pressEnter(m)
	settled := settle(t, cmd)
	assert.Equal(t, orchestrator.ErrorReply, settled.Reply.Content)

	updated, _ := m.Update(settled)
	m = updated.(Model)
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.View(), "Request failed")
}

// =============================================================================
// MISC MESSAGES
// =============================================================================

func TestModel_ModelChanged(t *testing.T) {
	m := newTestModel(t, answer("x"))

	updated, cmd := m.Update(ModelChangedMsg{Name: "gemini-next"})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "gemini-next", m.modelName)
	assert.Contains(t, m.statusMsg, "gemini-next")

	updated, cmd = m.Update(ModelChangedMsg{Name: "gemini-next"})
	assert.Nil(t, cmd, "same model is not announced twice")
	_ = updated
}

func TestModel_StatusClearsOnlyLatest(t *testing.T) {
	m := newTestModel(t, answer("x"))
	m.setStatus("one", false)
	m.setStatus("two", false)

	updated, _ := m.Update(statusClearMsg{seq: 1})
	m = updated.(Model)
	assert.Equal(t, "two", m.statusMsg)

	updated, _ = m.Update(statusClearMsg{seq: 2})
	m = updated.(Model)
	assert.Equal(t, "", m.statusMsg)
}

func TestModel_CopyWithoutReply(t *testing.T) {
	m := newTestModel(t, answer("x"))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = updated.(Model)
	assert.Contains(t, m.statusMsg, "No reply")
}

func TestModel_CopyResult(t *testing.T) {
	m := newTestModel(t, answer("x"))

	updated, _ := m.Update(CopyResultMsg{Chars: 42})
	assert.Equal(t, "Copied reply (42 chars)", updated.(Model).statusMsg)

	updated, _ = m.Update(CopyResultMsg{Err: errors.New("no clipboard")})
	assert.True(t, updated.(Model).statusIsErr)
}

func TestFormatCopied(t *testing.T) {
	tests := []struct {
		chars int
		want  string
	}{
		{0, "Copied reply (0 chars)"},
		{999, "Copied reply (999 chars)"},
		{1500, "Copied reply (1.5K chars)"},
	}
	for _, tt := range tests {
		if got := formatCopied(tt.chars); got != tt.want {
			t.Errorf("formatCopied(%d) = %q, want %q", tt.chars, got, tt.want)
		}
	}
}

func TestModel_UserMessageRendered(t *testing.T) {
	m := newTestModel(t, answer("**Section 379** covers theft."))
	m = typeText(m, "What law covers theft?")
	m, cmd := pressEnter(m)

	updated, _ := m.Update(settle(t, cmd))
	m = updated.(Model)

	out := ansiSeq.ReplaceAllString(m.renderTranscript(), "")
	assert.Contains(t, out, "What law covers theft?")
	assert.Contains(t, out, model.RoleAssistant.DisplayName())
	assert.Contains(t, out, "Section 379")
	assert.NotContains(t, out, "**", "markdown is rendered")
}

// =============================================================================
// STATE AND NOTICES
// =============================================================================

func TestModel_StateChangesDriveIndicator(t *testing.T) {
	m := newTestModel(t, answer("done"))
	m = typeText(m, "hello")

	m, cmd := pressEnter(m)
	assert.True(t, m.state.AwaitingReply)
	assert.Contains(t, ansiSeq.ReplaceAllString(m.View(), ""), "awaiting reply")

	settled := settle(t, cmd)

	// Replay every transition the orchestrator reported.
	for {
		select {
		case s := <-m.states:
			updated, next := m.Update(StateChangedMsg{State: s})
			m = updated.(Model)
			assert.NotNil(t, next, "listener is re-armed")
			continue
		default:
		}
		break
	}
	assert.False(t, m.state.AwaitingReply)
	assert.Equal(t, orchestrator.OutcomeReply, m.state.LastOutcome)

	updated, _ := m.Update(settled)
	m = updated.(Model)
	out := ansiSeq.ReplaceAllString(m.View(), "")
	assert.NotContains(t, out, "awaiting reply")
	assert.NotContains(t, out, "Thinking")
}

func TestModel_SpinnerStopsWhenIdle(t *testing.T) {
	m := newTestModel(t, answer("x"))

	_, cmd := m.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestModel_NoticeStyleFollowsOutcome(t *testing.T) {
	// A model reply that happens to read like the error text is still a reply.
	m := newTestModel(t, answer(orchestrator.ErrorReply))
	m = typeText(m, "hello")
	m, cmd := pressEnter(m)
	settled := settle(t, cmd)

	_, styled := m.noticeStyle(settled.Reply)
	assert.False(t, styled)

	updated, _ := m.Update(settled)
	assert.False(t, updated.(Model).statusIsErr)

	failing := newTestModel(t, stubGenerator(func(context.Context, []gemini.Content) (*gemini.GenerateContentResponse, error) {
		return nil, errors.New("boom")
	}))
	failing = typeText(failing, "hello")
	failing, cmd = pressEnter(failing)
	settled = settle(t, cmd)

	_, styled = failing.noticeStyle(settled.Reply)
	assert.True(t, styled)
}

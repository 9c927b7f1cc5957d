// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
	"github.com/jeranaias/legalaid-tui/internal/util"
)

// HeaderTitle is the application title shown in the header.
const HeaderTitle = "Legal Aid Agent"

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	inputStyle := m.theme.InputContainer
	if m.state.AwaitingReply {
		inputStyle = m.theme.InputContainerBusy
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		inputStyle.Width(max(m.width-2, 10)).Render(m.input.View()),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("⚖ " + HeaderTitle)

	var status string
	switch {
	case m.state.AwaitingReply:
		status = m.theme.StatusBusy.Render("● awaiting reply")
	case m.state.LastOutcome == orchestrator.OutcomeError:
		status = m.theme.StatusError.Render("● last request failed")
	default:
		status = m.theme.StatusReady.Render("● ready")
	}

	right := status
	if m.modelName != "" {
		right = m.theme.HeaderSubtitle.Render(m.modelName) + "  " + status
	}

	inner := max(m.width-2, 0)
	gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return m.theme.Header.Width(m.width).Render(util.TruncateWidth(title, inner))
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + right)
}

func (m Model) renderStatusBar() string {
	helpView := m.help.View(m.keys)
	if m.statusMsg == "" {
		return m.theme.StatusBar.Render(helpView)
	}

	style := m.theme.StatusNotice
	if m.statusIsErr {
		style = m.theme.StatusError
	}
	notice := style.Render(util.TruncateWidth(m.statusMsg, max(m.width/2, 10)))
	if m.help.ShowAll {
		return m.theme.StatusBar.Render(notice + "\n" + helpView)
	}
	return m.theme.StatusBar.Render(notice + "  " + helpView)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every message, plus the loading row while a
// reply is pending.
func (m Model) renderTranscript() string {
	messages := m.transcript.Snapshot()
	if len(messages) == 0 {
		return m.renderEmptyState()
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	if m.state.AwaitingReply {
		b.WriteString("\n\n")
		b.WriteString(m.theme.Loading.Render(m.spinner.View() + " Thinking..."))
	}
	return b.String()
}

func (m Model) renderEmptyState() string {
	text := m.theme.EmptyState.Render("⚖\n\n" + EmptyStateText)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, text)
}

func (m Model) renderMessage(msg model.Message) string {
	if msg.Role == model.RoleUser {
		return m.renderUserMessage(msg)
	}
	return m.renderAssistantMessage(msg)
}

func (m Model) label(msg model.Message) string {
	label := msg.Role.DisplayName()
	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	return label
}

func (m Model) renderUserMessage(msg model.Message) string {
	maxWidth := m.theme.BubbleWidth()
	bubble := m.theme.UserBubble
	// Border and padding take four cells.
	if widestLine(msg.Content) > maxWidth-4 {
		bubble = bubble.Width(maxWidth - 2)
	}

	block := lipgloss.JoinVertical(lipgloss.Right,
		m.theme.UserLabel.Render(m.label(msg)),
		bubble.Render(msg.Content),
	)
	return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
}

func (m Model) renderAssistantMessage(msg model.Message) string {
	var body string
	if style, ok := m.noticeStyle(msg); ok {
		body = style.Render(msg.Content)
	} else {
		body = m.markdown.render(msg.ID, msg.Content, m.contentWidth())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.AssistantLabel.Render(m.label(msg)),
		m.theme.AssistantBubble.Render(body),
	)
}

// noticeStyle picks the style for replies the orchestrator substituted.
// ok is false for text that came from the model, which is rendered as
// markdown.
func (m Model) noticeStyle(msg model.Message) (lipgloss.Style, bool) {
	switch m.orch.OutcomeOf(msg.ID) {
	case orchestrator.OutcomeError:
		return m.theme.StatusError, true
	case orchestrator.OutcomeFallback:
		return m.theme.StatusBusy, true
	}
	return lipgloss.Style{}, false
}

// contentWidth is the markdown wrap width for replies.
func (m Model) contentWidth() int {
	w := m.theme.BubbleWidth() - 2
	if m.wordWrap > 0 && m.wordWrap < w {
		w = m.wordWrap
	}
	return max(w, 20)
}

// =============================================================================
// HELPERS
// =============================================================================

func widestLine(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if w := util.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func lipglossHeight(s string) int {
	return lipgloss.Height(s)
}

func formatCopied(chars int) string {
	if chars < 1000 {
		return fmt.Sprintf("Copied reply (%d chars)", chars)
	}
	return fmt.Sprintf("Copied reply (%.1fK chars)", float64(chars)/1000)
}

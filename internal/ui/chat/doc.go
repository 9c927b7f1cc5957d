// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat screen for legalaid.

# Layout

  - Header: "Legal Aid Agent", the model name and a status indicator
  - Transcript: scrollable viewport; user messages right aligned, replies
    rendered as markdown with glamour
  - Input: multi-line textarea. Enter sends, Alt+Enter inserts a newline
  - Status bar: transient notices and key help

# Data Flow

The screen never mutates the transcript itself. Enter calls
orchestrator.Begin inside Update, which appends the user message at once,
and the blocking Turn.Complete runs inside a tea.Cmd. Every append on the
transcript is forwarded through a channel as a MessageAppendedMsg, which
re-renders the viewport and scrolls to the newest entry.
*/
package chat

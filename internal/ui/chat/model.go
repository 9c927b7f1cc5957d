// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
	"github.com/jeranaias/legalaid-tui/internal/ui/styles"
)

const (
	inputHeight     = 3
	statusTimeout   = 3 * time.Second
	eventBufferSize = 64

	// Placeholder shown in the empty input box.
	Placeholder = "Ask a legal question..."

	// EmptyStateText is shown before the first message.
	EmptyStateText = "Please ask your legal-related queries here."
)

// Options configures a Model.
type Options struct {
	Orchestrator   *orchestrator.Orchestrator
	Theme          *styles.Theme
	ModelName      string
	WordWrap       int // 0 follows the terminal width
	ShowTimestamps bool
	Context        context.Context
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx        context.Context
	orch       *orchestrator.Orchestrator
	transcript *model.Transcript
	theme      *styles.Theme
	keys       KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	markdown *markdownRenderer

	events      chan model.Message
	states      chan orchestrator.State
	unsubscribe func()

	// state mirrors the orchestrator through OnStateChange.
	state orchestrator.State

	modelName      string
	wordWrap       int
	showTimestamps bool

	width  int
	height int
	ready  bool

	statusMsg   string
	statusIsErr bool
	statusSeq   int
}

// New creates the chat screen. The transcript subscription lives until Close.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.FocusedStyle.CursorLine = ta.FocusedStyle.CursorLine.UnsetBackground()
	keys := DefaultKeyMap()
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Loading.PaddingLeft(0)

	transcript := opts.Orchestrator.Transcript()
	events := make(chan model.Message, eventBufferSize)
	unsubscribeMessages := transcript.Subscribe(func(msg model.Message) {
		// Dropping is safe: every render reads a fresh snapshot.
		select {
		case events <- msg:
		default:
		}
	})
	states := make(chan orchestrator.State, eventBufferSize)
	unsubscribeStates := opts.Orchestrator.OnStateChange(func(s orchestrator.State) {
		// TurnSettledMsg resyncs if one is dropped.
		select {
		case states <- s:
		default:
		}
	})

	return Model{
		ctx:            ctx,
		orch:           opts.Orchestrator,
		transcript:     transcript,
		theme:          theme,
		keys:           keys,
		viewport:       viewport.New(0, 0),
		input:          ta,
		spinner:        sp,
		help:           help.New(),
		markdown:       newMarkdownRenderer(theme.GlamourStyle()),
		events:         events,
		states:         states,
		unsubscribe:    func() { unsubscribeMessages(); unsubscribeStates() },
		state:          opts.Orchestrator.State(),
		modelName:      opts.ModelName,
		wordWrap:       opts.WordWrap,
		showTimestamps: opts.ShowTimestamps,
	}
}

// Close removes the transcript and state subscriptions.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// waitForAppend blocks until the next transcript append.
func waitForAppend(ch <-chan model.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return MessageAppendedMsg{Message: msg}
	}
}

// waitForState blocks until the next orchestrator state change.
func waitForState(ch <-chan orchestrator.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return StateChangedMsg{State: s}
	}
}

// completeTurn runs the blocking half of a turn off the update loop.
func completeTurn(ctx context.Context, turn *orchestrator.Turn) tea.Cmd {
	return func() tea.Msg {
		return TurnSettledMsg{Reply: turn.Complete(ctx)}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return CopyResultMsg{Chars: len([]rune(text)), Err: clipboard.WriteAll(text)}
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForAppend(m.events), waitForState(m.states))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case MessageAppendedMsg:
		m.refreshViewport()
		return m, waitForAppend(m.events)

	case StateChangedMsg:
		m.state = msg.State
		m.refreshViewport()
		return m, waitForState(m.states)

	case TurnSettledMsg:
		m.state = m.orch.State()
		m.refreshViewport()
		if m.orch.OutcomeOf(msg.Reply.ID) == orchestrator.OutcomeError {
			return m, m.setStatus("Request failed. Check the log for details.", true)
		}
		return m, nil

	case ModelChangedMsg:
		if msg.Name != "" && msg.Name != m.modelName {
			m.modelName = msg.Name
			return m, m.setStatus("Model switched to "+msg.Name, false)
		}
		return m, nil

	case CopyResultMsg:
		if msg.Err != nil {
			return m, m.setStatus("Copy failed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus(formatCopied(msg.Chars), false)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.AwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		reply, ok := m.transcript.LastByRole(model.RoleAssistant)
		if !ok {
			return m, m.setStatus("No reply to copy yet", false)
		}
		return m, copyToClipboard(reply.Content)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.orch.SetPendingInput(m.input.Value())
	return m, cmd
}

// submit starts a turn for the current input. The input is kept while a
// reply is pending so nothing typed is lost.
func (m Model) submit() (tea.Model, tea.Cmd) {
	turn, ok := m.orch.Begin(m.input.Value())
	if !ok {
		if m.orch.Busy() {
			return m, m.setStatus("Please wait for the current reply", false)
		}
		return m, nil
	}
	m.state = m.orch.State()
	m.input.Reset()
	m.refreshViewport()
	return m, tea.Batch(m.spinner.Tick, completeTurn(m.ctx, turn))
}

// setStatus shows a notice in the status bar for statusTimeout.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.statusMsg = text
	m.statusIsErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// resize lays out the components for a width x height terminal.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.help.Width = width

	m.input.SetWidth(max(width-2, 10))

	chrome := lipglossHeight(m.renderHeader()) +
		inputHeight + 2 +
		lipglossHeight(m.renderStatusBar())
	vpHeight := max(height-chrome, 3)

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the newest entry.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-oriented chat for legalaid.
//
// Used with --plain, "legalaid chat", or when stdout is not a terminal.
// Replies are printed by a transcript observer, so the REPL sees exactly
// what the TUI would.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/legalaid-tui/internal/model"
	"github.com/jeranaias/legalaid-tui/internal/orchestrator"
)

// LineReader reads one line of user input. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// REPLOptions configures a REPL.
type REPLOptions struct {
	Orchestrator *orchestrator.Orchestrator
	ModelName    string

	// Input defaults to a liner session on the controlling terminal.
	Input LineReader
	// Out defaults to os.Stdout.
	Out io.Writer

	// GlamourStyle enables markdown rendering of replies when non-empty.
	GlamourStyle string
	WordWrap     int

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// InterruptedNotice follows the error reply of a turn cut short by Ctrl+C.
const InterruptedNotice = "Interrupted: the request was cancelled before a reply arrived."

// REPL is an interactive prompt loop over an orchestrator.
type REPL struct {
	orch      *orchestrator.Orchestrator
	modelName string
	in        LineReader
	out       io.Writer
	renderer  *glamour.TermRenderer
	clipboard func(string) error

	// interrupts derives the context for one turn.
	interrupts func(context.Context) (context.Context, context.CancelFunc)
}

func notifyInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// NewREPL creates a REPL. Markdown rendering is skipped if the renderer
// cannot be built.
func NewREPL(opts REPLOptions) *REPL {
	r := &REPL{
		orch:       opts.Orchestrator,
		modelName:  opts.ModelName,
		in:         opts.Input,
		out:        opts.Out,
		clipboard:  opts.Clipboard,
		interrupts: notifyInterrupt,
	}
	if r.in == nil {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		r.in = line
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.clipboard == nil {
		r.clipboard = clipboard.WriteAll
	}
	if opts.GlamourStyle != "" {
		wrap := opts.WordWrap
		if wrap <= 0 {
			wrap = GetTerminalWidth() - 4
		}
		if tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(opts.GlamourStyle),
			glamour.WithWordWrap(wrap),
		); err == nil {
			r.renderer = tr
		}
	}
	return r
}

// Run reads questions until /quit, EOF or Ctrl+C at the prompt.
// Ctrl+C while a reply is pending abandons that request only; the turn still
// settles with the error reply, followed by InterruptedNotice.
func (r *REPL) Run(ctx context.Context) error {
	defer r.in.Close()

	unsubscribe := r.orch.Transcript().Subscribe(func(msg model.Message) {
		if msg.Role == model.RoleAssistant {
			fmt.Fprintln(r.out, r.render(msg))
			fmt.Fprintln(r.out)
		}
	})
	defer unsubscribe()

	r.printWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.in.Prompt(PromptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		r.in.AppendHistory(input)

		if strings.HasPrefix(trimmed, "/") || strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit") {
			if !r.handleCommand(trimmed) {
				return nil
			}
			continue
		}

		r.ask(ctx, input)
	}
}

// ask submits one question and blocks until its reply has been printed.
func (r *REPL) ask(ctx context.Context, input string) {
	turnCtx, stop := r.interrupts(ctx)
	defer stop()

	if r.renderer != nil {
		fmt.Fprintln(r.out, DimStyle.Render("Thinking..."))
	}
	if r.orch.Submit(turnCtx, input) && turnCtx.Err() != nil && ctx.Err() == nil {
		fmt.Fprintln(r.out, WarningStyle.Render(InterruptedNotice))
		fmt.Fprintln(r.out)
	}
}

// handleCommand runs a slash command and reports whether to keep going.
func (r *REPL) handleCommand(cmd string) bool {
	name := strings.ToLower(strings.Fields(cmd)[0])
	switch name {
	case "/quit", "/exit", "/q", "exit", "quit":
		return false

	case "/help", "/?":
		r.printHelp()

	case "/copy":
		reply, ok := r.orch.Transcript().LastByRole(model.RoleAssistant)
		if !ok {
			fmt.Fprintln(r.out, WarningStyle.Render("No reply to copy yet."))
			return true
		}
		if err := r.clipboard(reply.Content); err != nil {
			fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("Copy failed:"), err)
			return true
		}
		fmt.Fprintf(r.out, "%s %s\n", SuccessStyle.Render("Copied last reply:"), DimStyle.Render(reply.Preview(48)))

	case "/model":
		fmt.Fprintf(r.out, "Model: %s\n", r.modelName)

	default:
		fmt.Fprintf(r.out, "%s %s (try /help)\n", WarningStyle.Render("Unknown command:"), name)
	}
	return true
}

func (r *REPL) render(msg model.Message) string {
	label := AssistantStyle.Render(msg.Role.DisplayName() + ":")

	if style, ok := r.noticeStyle(msg); ok {
		return label + " " + style.Render(msg.Content)
	}

	if r.renderer != nil {
		if out, err := r.renderer.Render(msg.Content); err == nil {
			return label + "\n" + strings.TrimRight(out, "\n")
		}
	}
	return label + " " + msg.Content
}

// noticeStyle picks the style for replies the orchestrator substituted.
// ok is false for text that came from the model.
func (r *REPL) noticeStyle(msg model.Message) (lipgloss.Style, bool) {
	switch r.orch.OutcomeOf(msg.ID) {
	case orchestrator.OutcomeError:
		return ErrorStyle, true
	case orchestrator.OutcomeFallback:
		return WarningStyle, true
	}
	return lipgloss.Style{}, false
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render("Legal Aid Agent"))
	if r.modelName != "" {
		fmt.Fprintln(r.out, DimStyle.Render("Model: "+r.modelName))
	}
	fmt.Fprintln(r.out, "Please ask your legal-related queries here.")
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Fprintln(r.out)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  /help    Show this help")
	fmt.Fprintln(r.out, "  /copy    Copy the last reply to the clipboard")
	fmt.Fprintln(r.out, "  /model   Show the model in use")
	fmt.Fprintln(r.out, "  /quit    Leave (also Ctrl+D)")
	fmt.Fprintln(r.out, "Anything else is sent as a question. Ctrl+C stops waiting for a pending reply.")
}

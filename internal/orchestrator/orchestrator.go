// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/legalaid-tui/internal/gemini"
	"github.com/jeranaias/legalaid-tui/internal/model"
)

// Generator sends a full conversation and returns the decoded answer.
// gemini.Client and gemini.SDKClient both satisfy it.
type Generator interface {
	GenerateContent(ctx context.Context, contents []gemini.Content) (*gemini.GenerateContentResponse, error)
}

// =============================================================================
// STATE
// =============================================================================

// Phase is the position of the current turn in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingResponse
	PhaseCompleted
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingResponse:
		return "awaiting-response"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome records how the last turn settled.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeReply
	OutcomeFallback
	OutcomeError
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReply:
		return "reply"
	case OutcomeFallback:
		return "fallback"
	case OutcomeError:
		return "error"
	default:
		return "none"
	}
}

// State is the session UI state shared with the presentation layer.
type State struct {
	PendingInput  string
	AwaitingReply bool
	Phase         Phase
	LastOutcome   Outcome
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for turn outcomes.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSystemPrompt replaces SystemPrompt. An empty prompt is ignored.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(prompt) != "" {
			o.systemPrompt = prompt
		}
	}
}

// Orchestrator owns the session state and drives one turn at a time.
type Orchestrator struct {
	transcript   *model.Transcript
	gen          Generator
	systemPrompt string
	logger       *log.Logger

	mu        sync.Mutex
	state     State
	turnSeq   uint64
	listeners []listener
	nextID    int
	outcomes  map[string]Outcome
}

// New creates an orchestrator writing to transcript and asking gen.
func New(transcript *model.Transcript, gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transcript:   transcript,
		gen:          gen,
		systemPrompt: SystemPrompt,
		logger:       log.Default(),
		outcomes:     make(map[string]Outcome),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Transcript returns the transcript the orchestrator appends to.
func (o *Orchestrator) Transcript() *model.Transcript {
	return o.transcript
}

// State returns a copy of the current session state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether a turn is awaiting its reply.
func (o *Orchestrator) Busy() bool {
	return o.State().AwaitingReply
}

// OutcomeOf returns how the turn that produced the assistant message id
// settled. It is OutcomeNone for user messages and unknown ids.
func (o *Orchestrator) OutcomeOf(id string) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[id]
}

// SetPendingInput records the text currently being composed.
func (o *Orchestrator) SetPendingInput(s string) {
	o.mu.Lock()
	o.state.PendingInput = s
	o.mu.Unlock()
}

type listener struct {
	id int
	fn func(State)
}

// OnStateChange registers fn for every phase transition.
// fn runs on the goroutine that caused the change and must not block.
// The returned func removes the registration.
func (o *Orchestrator) OnStateChange(fn func(State)) (remove func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners = append(o.listeners, listener{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, l := range o.listeners {
				if l.id == id {
					o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (o *Orchestrator) notify(s State) {
	o.mu.Lock()
	listeners := make([]listener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()
	for _, l := range listeners {
		l.fn(s)
	}
}

// Submit runs a whole turn for raw and blocks until its reply is appended.
// It returns false without doing anything when raw is blank or another turn
// is still awaiting its reply.
func (o *Orchestrator) Submit(ctx context.Context, raw string) bool {
	turn, ok := o.Begin(raw)
	if !ok {
		return false
	}
	turn.Complete(ctx)
	return true
}

// Begin performs the non-blocking half of a turn: it appends the user
// message, clears the pending input, marks the session as awaiting and
// builds the request. The returned Turn must be completed.
func (o *Orchestrator) Begin(raw string) (*Turn, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	o.mu.Lock()
	if o.state.AwaitingReply {
		o.mu.Unlock()
		o.logger.Printf("orchestrator: submit ignored, turn %d still awaiting reply", o.currentSeq())
		return nil, false
	}
	o.turnSeq++
	seq := o.turnSeq
	o.state.AwaitingReply = true
	o.state.Phase = PhaseSubmitting
	submitting := o.state
	o.mu.Unlock()
	o.notify(submitting)

	history := o.transcript.Snapshot()
	o.transcript.Append(model.NewUserMessage(raw))

	o.mu.Lock()
	o.state.PendingInput = ""
	o.state.Phase = PhaseAwaitingResponse
	awaiting := o.state
	o.mu.Unlock()
	o.notify(awaiting)

	return &Turn{
		o:        o,
		seq:      seq,
		contents: BuildContents(o.systemPrompt, history, raw),
	}, true
}

func (o *Orchestrator) currentSeq() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.turnSeq
}

// =============================================================================
// TURN
// =============================================================================

// Turn is a submitted question whose reply has not been appended yet.
type Turn struct {
	o        *Orchestrator
	seq      uint64
	contents []gemini.Content

	once  sync.Once
	reply model.Message
}

// Complete sends the request, appends the assistant message and clears the
// awaiting flag. Later calls return the same message without another request.
func (t *Turn) Complete(ctx context.Context) model.Message {
	t.once.Do(func() {
		t.reply = t.o.complete(ctx, t)
	})
	return t.reply
}

func (o *Orchestrator) complete(ctx context.Context, t *Turn) model.Message {
	text, outcome := o.generate(ctx, t)
	reply := model.NewAssistantMessage(text)

	// Recorded first so observers of the append can look it up.
	o.mu.Lock()
	o.outcomes[reply.ID] = outcome
	o.mu.Unlock()
	o.transcript.Append(reply)

	o.mu.Lock()
	o.state.LastOutcome = outcome
	if outcome == OutcomeError {
		o.state.Phase = PhaseFailed
	} else {
		o.state.Phase = PhaseCompleted
	}
	settled := o.state
	o.state.Phase = PhaseIdle
	o.state.AwaitingReply = false
	idle := o.state
	o.mu.Unlock()

	o.notify(settled)
	o.notify(idle)
	return reply
}

// generate makes the single request of a turn and picks the text to show.
func (o *Orchestrator) generate(ctx context.Context, t *Turn) (text string, outcome Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("orchestrator: turn %d: generator panicked: %v", t.seq, r)
			text, outcome = ErrorReply, OutcomeError
		}
	}()

	resp, err := o.gen.GenerateContent(ctx, t.contents)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		o.logger.Printf("orchestrator: turn %d failed after %v (%s): %v", t.seq, elapsed, classify(err), err)
		return ErrorReply, OutcomeError
	}

	if s, ok := resp.Text(); ok {
		o.logger.Printf("orchestrator: turn %d answered in %v (%d chars)", t.seq, elapsed, len(s))
		return s, OutcomeReply
	}

	reason := "no text in first candidate"
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason = "blocked: " + resp.PromptFeedback.BlockReason
	} else if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		reason = "finish reason " + resp.Candidates[0].FinishReason
	}
	o.logger.Printf("orchestrator: turn %d used fallback after %v: %s", t.seq, elapsed, reason)
	return FallbackReply, OutcomeFallback
}

// classify names the failure kind for the log line.
func classify(err error) string {
	var apiErr *gemini.APIError
	switch {
	case errors.Is(err, gemini.ErrNotConfigured), errors.Is(err, gemini.ErrNoModel):
		return "not configured"
	case errors.Is(err, gemini.ErrAuthFailed):
		return "auth"
	case errors.Is(err, gemini.ErrRateLimited):
		return "rate limited"
	case errors.Is(err, gemini.ErrModelNotFound):
		return "model not found"
	case errors.Is(err, gemini.ErrMalformedResponse):
		return "malformed response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &apiErr):
		return "api error"
	default:
		return "transport"
	}
}

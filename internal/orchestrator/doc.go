// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs one question/answer turn at a time against a
// Generator and records both sides in a model.Transcript.
//
// A turn moves through Idle, Submitting, AwaitingResponse and then Completed
// or Failed before returning to Idle. While a turn is awaiting its reply any
// further submission is refused, so at most one request is ever in flight.
//
// Submit never returns an error. Failures become a fixed assistant message
// (ErrorReply) and the cause is written to the logger. OutcomeOf tells
// front ends which assistant messages are error or fallback text.
//
// # Usage
//
//	t := model.NewTranscript()
//	o := orchestrator.New(t, gemini.NewClient(key, "gemini-2.5-flash"))
//	o.Submit(ctx, "My landlord kept my deposit. What can I do?")
//	last, _ := t.Last() // assistant reply, fallback or error text
//
// Callers that must not block (a Bubble Tea update loop) split the turn:
//
//	turn, ok := o.Begin(input) // appends the user message, never blocks
//	if ok {
//	    go turn.Complete(ctx) // sends the request, appends the reply
//	}
package orchestrator

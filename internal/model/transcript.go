// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// Transcript is the ordered list of messages for the running session.
// Messages can only be appended. Insertion order is conversation order.
type Transcript struct {
	mu        sync.RWMutex
	messages  []Message
	observers map[int]func(Message)
	nextID    int
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		messages:  make([]Message, 0, 16),
		observers: make(map[int]func(Message)),
	}
}

// Append adds msg to the end and returns the new length.
// Observers are called after the lock is released, in subscription order.
func (t *Transcript) Append(msg Message) int {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	n := len(t.messages)
	observers := t.observersLocked()
	t.mu.Unlock()

	for _, fn := range observers {
		fn(msg)
	}
	return n
}

// Snapshot returns a copy of all messages in order.
func (t *Transcript) Snapshot() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastByRole returns the most recent message with the given role.
func (t *Transcript) LastByRole(role Role) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == role {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Subscribe registers fn to be called after every append.
// fn must not block. The returned func removes the subscription.
func (t *Transcript) Subscribe(fn func(Message)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.observers, id)
			t.mu.Unlock()
		})
	}
}

// observersLocked returns observers ordered by subscription. Caller holds mu.
func (t *Transcript) observersLocked() []func(Message) {
	if len(t.observers) == 0 {
		return nil
	}
	out := make([]func(Message), 0, len(t.observers))
	for id := 0; id < t.nextID; id++ {
		if fn, ok := t.observers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

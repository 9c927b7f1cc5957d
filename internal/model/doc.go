// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Message: immutable value with role, content, ID and timestamp
//   - Role: user or assistant
//   - Transcript: append-only, mutex-guarded list of messages with observers
//
// # Usage
//
//	t := model.NewTranscript()
//	unsubscribe := t.Subscribe(func(m model.Message) {
//	    fmt.Println(m.Role.DisplayName(), m.Content)
//	})
//	defer unsubscribe()
//	t.Append(model.NewUserMessage("Hello!"))
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the chat session engine.
//
// The engine owns one conversation: its history, its cited sources and
// whether a backend request is outstanding. Front ends hand it raw input
// and render the history snapshot it returns; they hold no chat state of
// their own.
//
// # Key Types
//
//   - Engine: Session state machine (Idle, AwaitingResponse)
//   - Options: Collaborators (transport, store, linker, navigator, exit)
//   - Outcome: What a submission did
//
// # Usage
//
//	eng := session.New(session.Options{
//	    SessionID: "default",
//	    Transport: backend.NewClient(),
//	    Store:     storage.NewStore(backend),
//	})
//	outcome, err := eng.Submit(ctx, "What is Epistemic Technology?")
//	if errors.Is(err, session.ErrBusy) {
//	    // a request is already outstanding
//	}
//	for _, msg := range eng.History() {
//	    // render
//	}
//
// # Submission
//
// Every non-empty submission first appends the literal input as a user
// message. Colon commands are then handled locally without leaving Idle.
// Anything else goes to the backend; a failed request is answered with a
// fixed apology instead of an error. State is saved after every change.
package session

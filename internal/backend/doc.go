// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the chatbot backend.
//
// The backend answers one question per request: the client POSTs
// {"query": "..."} and receives the answer text with the documents the
// answer was drawn from.
//
// # Key Types
//
//   - Client: HTTP client for the chat endpoint
//   - ClientConfig: Endpoint, timeout and optional rate limit
//   - ChatResponse: Answer text and cited sources
//   - ClientError: Typed failure (status, connection, timeout, decode)
//
// # Usage
//
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    Endpoint: "http://localhost:8181/chat",
//	})
//	resp, err := client.Chat(ctx, "What is Epistemic Technology?")
//
// Requests are made once. Callers decide how to present a failure.
package backend

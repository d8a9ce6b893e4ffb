// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and cited sources.
package model

import (
	"time"

	"github.com/epistemic-technology/termchat/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Bot"
	default:
		return string(r)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the chat transcript.
// Messages are never modified once appended to a history.
type Message struct {
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message holding the literal input.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewBotMessage creates a bot message citing the given sources.
func NewBotMessage(content string, sources []Source) Message {
	msg := NewMessage(RoleBot, content)
	if len(sources) > 0 {
		msg.Sources = append([]Source(nil), sources...)
	}
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasSources reports whether the message cites any source.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Source(nil), m.Sources...)
	}
	return m
}

// CloneHistory returns a deep copy of a message slice.
// A nil history clones to an empty, non-nil slice.
func CloneHistory(history []Message) []Message {
	out := make([]Message, len(history))
	for i, msg := range history {
		out[i] = msg.Clone()
	}
	return out
}

// =============================================================================
// GREETING
// =============================================================================

// DefaultGreeting is the bot message that opens a fresh session.
const DefaultGreeting = "Hello Professor\nWould you like to learn about Epistemic Technology?"

// GreetingHistory returns the history of a fresh session.
func GreetingHistory() []Message {
	return []Message{NewBotMessage(DefaultGreeting, nil)}
}

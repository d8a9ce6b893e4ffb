// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync/atomic"

	"github.com/epistemic-technology/termchat/internal/session"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SubmitResultMsg is sent when a submission finishes.
type SubmitResultMsg struct {
	Input   string
	Outcome session.Outcome
	Err     error
	Exit    bool
}

// ErrorMsg reports an error to show in the footer.
type ErrorMsg struct {
	Err error
}

// =============================================================================
// EXIT SIGNAL
// =============================================================================

// ExitSignal records that :exit ran. Pass Fire as the engine's OnExit
// callback and the same signal to the model.
type ExitSignal struct {
	fired atomic.Bool
}

// NewExitSignal creates an unfired signal.
func NewExitSignal() *ExitSignal {
	return &ExitSignal{}
}

// Fire marks the signal.
func (s *ExitSignal) Fire() {
	s.fired.Store(true)
}

// Fired reports whether Fire was called.
func (s *ExitSignal) Fired() bool {
	return s != nil && s.fired.Load()
}

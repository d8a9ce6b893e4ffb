// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/epistemic-technology/termchat/internal/backend"
	"github.com/epistemic-technology/termchat/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the chat backend could not answer
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "reset", "config")
	Action  string // Action being performed (e.g., "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// UsageError marks a bad invocation.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ErrRequestFailed is returned by ask when the backend did not answer.
var ErrRequestFailed = errors.New("chat request failed")

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var invalid config.ValidateErrors
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &invalid):
		return ExitConfigError
	case errors.Is(err, backend.ErrTimeout):
		return ExitTimeoutError
	case errors.Is(err, ErrRequestFailed),
		errors.Is(err, backend.ErrUnavailable),
		errors.Is(err, backend.ErrBadStatus),
		errors.Is(err, backend.ErrBadResponse):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}

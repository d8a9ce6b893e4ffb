// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with the prefix
	IsCommand bool

	// Name is the raw command text after the prefix (e.g., "help")
	Name string

	// Command is the matched command (nil if not found)
	Command *Command

	// RawInput is the original input string
	RawInput string
}

// Known reports whether the input named a registered command.
func (r ParseResult) Known() bool {
	return r.IsCommand && r.Command != nil
}

// =============================================================================
// PARSER
// =============================================================================

// Parser classifies input against a registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse classifies input. The input is expected to be trimmed already;
// the name is everything after the prefix, compared verbatim, so ":Help"
// and ":help now" are unknown commands.
func (p *Parser) Parse(input string) ParseResult {
	result := ParseResult{RawInput: input}

	if !IsCommand(input) {
		return result
	}

	result.IsCommand = true
	result.Name = ExtractCommandName(input)
	if p.registry != nil {
		result.Command = p.registry.Get(result.Name)
	}
	return result
}

// =============================================================================
// HELPERS
// =============================================================================

// IsCommand reports whether input is a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(input, Prefix)
}

// ExtractCommandName returns the text after the prefix, or "" when input
// is not a command.
func ExtractCommandName(input string) string {
	if !IsCommand(input) {
		return ""
	}
	return strings.TrimPrefix(input, Prefix)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the colon command system for the chat session.
//
// Input that begins with ":" is a command. Everything after the colon is
// the command name, matched exactly and case-sensitively; there are no
// arguments. Unknown names are absorbed without output.
//
// # Key Types
//
//   - Registry: Lookup table of all available commands
//   - Command: Name, description and handler
//   - Context: What a handler may touch, plus recorded side effects
//   - ParseResult: Whether input is a command and which one
//   - Completer: Tab completion for command names
//
// # Built-in Commands
//
//   - :help: List available commands
//   - :about: About Epistemic Technology (cites the about page)
//   - :contact: Open the contact page
//   - :clear: Clear the chat history
//   - :reset: Erase the saved session and start over
//   - :exit: Exit the chat
//   - :sources: List cited sources
//   - :1 .. :9: Open a cited source
//
// # Usage
//
//	result := parser.Parse(input)
//	if result.IsCommand {
//	    registry.Execute(ctx, result)
//	    if url := ctx.NavigateTo(); url != "" {
//	        navigator.Open(url)
//	    }
//	}
package commands

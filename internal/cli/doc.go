// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the termchat command line.
//
// The command tree is built with cobra. Every chat entry point (tui, repl,
// ask) goes through the same Runtime: config from ~/.termchat/config.toml,
// .env files and the environment, a storage backend for the session's
// records, the HTTP backend client and a session.Engine over all of them.
//
// # Commands
//
//	termchat            full-screen chat on a terminal, line mode otherwise
//	termchat tui        full-screen chat
//	termchat repl       line-mode chat with input history
//	termchat ask Q      one question, answer on stdout (--json available)
//	termchat reset      erase the session's saved records
//	termchat config     show, get, set the configuration
//	termchat version    build information
//
// # Global Flags
//
//	--config PATH       config file
//	--session ID        session id namespacing saved records
//	--log-level LEVEL   debug, info, warn, error
//	--log-file PATH     log destination (the TUI always logs to a file)
//	--storage KIND      file, sqlite or memory
//
// Errors are returned up to main, which prints them and exits with
// ExitCode(err).
package cli

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a saved chat session to a file.
//
// # Supported Formats
//
//   - markdown: transcript with cited sources as links
//   - json: the history, registry and cursor as stored
//
// # Usage
//
//	t := export.FromState(id, store.Load(id))
//	exp, err := export.ForFormat("markdown", opts)
//	path, err := export.ExportToFile(t, exp, opts)
package export

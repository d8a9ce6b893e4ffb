// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat session state between runs.
//
// Persistence is best-effort: a session keeps working from memory when the
// storage backend is missing, unreadable or full.
//
// # Key Types
//
//   - Backend: Key/value storage with the shape of browser local storage
//   - Store: Reads and writes the three session records over a Backend
//   - State: History, sources and registry cursor of one session
//   - SaveResult: Saved, SkippedNoStorage or FailedAndLogged
//
// # Records
//
// Each session id S owns three independently parsed records:
//
//	chat_history_S       JSON array of messages
//	chat_sources_S       JSON array of sources
//	chat_source_index_S  JSON integer (registry cursor)
//
// # Usage
//
//	backend, err := storage.Open(storage.KindFile, dir)
//	store := storage.NewStore(backend) // nil backend means memory only
//	state := store.Load("s1")
//	store.Save("s1", state)
//
// # Storage Location
//
// The file backend stores one JSON file per record in ~/.termchat/sessions/.
// The sqlite backend keeps all records in a single kv table.
package storage

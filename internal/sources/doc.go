// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sources tracks documents cited by the chatbot backend.
//
// # Key Types
//
//   - Registry: Bounded ring buffer of cited sources (capacity 9)
//   - Linker: Maps a source file path to a page URL on the site
//
// # Slot Assignment
//
// Every stored source receives a 1-based slot that the user types as a
// command (":3") to open it. The registry appends until it holds Capacity
// entries, then overwrites the oldest position. Its cursor counts total
// insertions modulo Capacity from the first insertion, so entry i always
// carries slot i+1:
//
//	reg := sources.New()
//	stored := reg.Add(src)          // stored.Slot == 1
//	src, ok := reg.Resolve(0)       // lookup for ":1"
package sources

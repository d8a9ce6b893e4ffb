// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sources tracks documents cited by the chatbot backend.
package sources

import (
	"github.com/epistemic-technology/termchat/internal/model"
)

// Capacity is the number of sources the registry retains.
const Capacity = 9

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is a fixed-capacity ring buffer of cited sources.
//
// Entries and cursor are private so that no caller can desynchronise them.
// The zero value is not usable; create registries with New or Restore.
// A Registry is not safe for concurrent use; the session engine guards it.
type Registry struct {
	entries []model.Source
	cursor  int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make([]model.Source, 0, Capacity),
	}
}

// Restore rebuilds a registry from persisted entries and cursor.
//
// At most Capacity entries are kept and slots are rewritten to match their
// position. While the buffer is not full the cursor must equal the entry
// count; an out-of-range or inconsistent cursor is replaced by it.
func Restore(entries []model.Source, cursor int) *Registry {
	r := New()
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	for i, src := range entries {
		src.Slot = i + 1
		r.entries = append(r.entries, src)
	}

	switch {
	case len(r.entries) < Capacity:
		r.cursor = len(r.entries)
	case cursor < 0 || cursor >= Capacity:
		r.cursor = 0
	default:
		r.cursor = cursor
	}
	return r
}

// Add stores a source and returns the stored copy with its slot assigned.
// When the buffer is full the entry at the cursor is evicted.
func (r *Registry) Add(src model.Source) model.Source {
	if len(r.entries) < Capacity {
		src.Slot = len(r.entries) + 1
		r.entries = append(r.entries, src)
	} else {
		src.Slot = r.cursor + 1
		r.entries[r.cursor] = src
	}
	r.cursor = (r.cursor + 1) % Capacity
	return src
}

// List returns a copy of the stored sources in slot order.
func (r *Registry) List() []model.Source {
	out := make([]model.Source, len(r.entries))
	copy(out, r.entries)
	return out
}

// Resolve returns the source at a 0-based index (slot-1).
func (r *Registry) Resolve(index int) (model.Source, bool) {
	if index < 0 || index >= len(r.entries) {
		return model.Source{}, false
	}
	return r.entries[index], true
}

// Cursor returns the next overwrite position in [0, Capacity).
func (r *Registry) Cursor() int {
	return r.cursor
}

// Len returns the number of stored sources.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Full reports whether the next Add will evict an entry.
func (r *Registry) Full() bool {
	return len(r.entries) == Capacity
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/sources"
)

// Record key prefixes. The session id is appended to each.
const (
	HistoryKeyPrefix     = "chat_history_"
	SourcesKeyPrefix     = "chat_sources_"
	SourceIndexKeyPrefix = "chat_source_index_"
)

// =============================================================================
// ERRORS
// =============================================================================

// StorageError describes a failure on a single record.
type StorageError struct {
	Op      string // "read", "write", "delete", "decode", "encode", "resolve"
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage %s %s", e.Op, e.Key)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// STATE AND RESULTS
// =============================================================================

// State is the persisted part of a chat session.
type State struct {
	History []model.Message
	Sources []model.Source
	Cursor  int
}

// DefaultState returns the state of a fresh session.
func DefaultState() State {
	return State{
		History: model.GreetingHistory(),
		Sources: []model.Source{},
		Cursor:  0,
	}
}

// SaveResult reports what a Save did.
type SaveResult int

const (
	// Saved means all three records were written.
	Saved SaveResult = iota
	// SkippedNoStorage means no backend is attached.
	SkippedNoStorage
	// FailedAndLogged means at least one record failed to write.
	FailedAndLogged
)

// String returns the result name.
func (r SaveResult) String() string {
	switch r {
	case Saved:
		return "saved"
	case SkippedNoStorage:
		return "skipped (no storage)"
	case FailedAndLogged:
		return "failed"
	default:
		return "unknown"
	}
}

// Keys holds the three record keys of a session.
type Keys struct {
	History     string
	Sources     string
	SourceIndex string
}

// KeysFor returns the record keys for sessionID.
func KeysFor(sessionID string) Keys {
	return Keys{
		History:     HistoryKeyPrefix + sessionID,
		Sources:     SourcesKeyPrefix + sessionID,
		SourceIndex: SourceIndexKeyPrefix + sessionID,
	}
}

// All returns the keys in write order.
func (k Keys) All() []string {
	return []string{k.History, k.Sources, k.SourceIndex}
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes session snapshots over a Backend.
// A Store with a nil backend loads defaults and skips every save.
type Store struct {
	backend Backend
}

// NewStore creates a store. backend may be nil.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Available reports whether a backend is attached.
func (s *Store) Available() bool {
	return s != nil && s.backend != nil
}

// Backend returns the attached backend, or nil.
func (s *Store) Backend() Backend {
	if s == nil {
		return nil
	}
	return s.backend
}

// Keys returns the three record keys for sessionID.
func (s *Store) Keys(sessionID string) Keys {
	return KeysFor(sessionID)
}

// Load restores the state of sessionID. Each record is parsed on its own;
// a missing or malformed record yields that record's default.
func (s *Store) Load(sessionID string) State {
	state := DefaultState()
	if !s.Available() {
		return state
	}

	keys := KeysFor(sessionID)

	if raw, ok := s.read(keys.History); ok {
		if history, err := decodeHistory(raw); err != nil {
			logDecodeFailure(keys.History, err)
		} else {
			state.History = history
		}
	}

	if raw, ok := s.read(keys.Sources); ok {
		var list []model.Source
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			logDecodeFailure(keys.Sources, err)
		} else if list != nil {
			state.Sources = list
		}
	}

	if raw, ok := s.read(keys.SourceIndex); ok {
		cursor, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			logDecodeFailure(keys.SourceIndex, err)
		} else {
			state.Cursor = cursor
		}
	}

	// Registry normalisation keeps slots and cursor consistent with the entries.
	reg := sources.Restore(state.Sources, state.Cursor)
	state.Sources = reg.List()
	state.Cursor = reg.Cursor()

	return state
}

// Save writes all three records. Every record is attempted even when an
// earlier one fails.
func (s *Store) Save(sessionID string, state State) SaveResult {
	if !s.Available() {
		return SkippedNoStorage
	}

	keys := KeysFor(sessionID)
	history := state.History
	if history == nil {
		history = []model.Message{}
	}
	list := state.Sources
	if list == nil {
		list = []model.Source{}
	}

	failed := false
	if err := s.writeJSON(keys.History, history); err != nil {
		logger.Warn("failed to save record", "key", keys.History, "err", err)
		failed = true
	}
	if err := s.writeJSON(keys.Sources, list); err != nil {
		logger.Warn("failed to save record", "key", keys.Sources, "err", err)
		failed = true
	}
	if err := s.writeJSON(keys.SourceIndex, state.Cursor); err != nil {
		logger.Warn("failed to save record", "key", keys.SourceIndex, "err", err)
		failed = true
	}

	if failed {
		return FailedAndLogged
	}
	return Saved
}

// Reset deletes the records of sessionID and returns the default state.
func (s *Store) Reset(sessionID string) State {
	if s.Available() {
		for _, key := range KeysFor(sessionID).All() {
			if err := s.backend.Delete(key); err != nil {
				logger.Warn("failed to delete record", "key", key,
					"err", &StorageError{Op: "delete", Key: key, Cause: err})
			}
		}
	}
	return DefaultState()
}

// Close closes the attached backend.
func (s *Store) Close() error {
	if !s.Available() {
		return nil
	}
	return s.backend.Close()
}

// read returns the raw record; read errors are logged and reported as absent.
func (s *Store) read(key string) (string, bool) {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		logger.Warn("failed to read record", "key", key,
			"err", &StorageError{Op: "read", Key: key, Cause: err})
		return "", false
	}
	return raw, ok
}

func (s *Store) writeJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Cause: err}
	}
	if err := s.backend.Set(key, string(data)); err != nil {
		return &StorageError{Op: "write", Key: key, Cause: err}
	}
	return nil
}

func decodeHistory(raw string) ([]model.Message, error) {
	var history []model.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, err
	}
	if history == nil {
		return nil, errors.New("history is null")
	}
	for i, msg := range history {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("message %d has unknown type %q", i, msg.Role)
		}
	}
	return history, nil
}

func logDecodeFailure(key string, err error) {
	logger.Warn("ignoring malformed record", "key", key,
		"err", &StorageError{Op: "decode", Key: key, Cause: err})
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat session state between runs.
package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is a string key/value store.
type Backend interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// Kinds lists the accepted backend kinds.
func Kinds() []Kind {
	return []Kind{KindFile, KindSQLite, KindMemory}
}

// ParseKind converts a configuration value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFile, KindSQLite, KindMemory:
		return k, nil
	case "":
		return KindFile, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (want %s)", s, KindList("|"))
	}
}

// KindList joins the accepted kinds with sep.
func KindList(sep string) string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, sep)
}

// Open creates the backend of the given kind rooted at path.
// For KindFile path is a directory, for KindSQLite a database file.
func Open(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindFile:
		fb, err := NewFileBackend(path)
		if err != nil {
			return nil, err
		}
		return fb, nil
	case KindSQLite:
		sb, err := NewSQLiteBackend(path)
		if err != nil {
			return nil, err
		}
		return sb, nil
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps records in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/epistemic-technology/termchat/internal/util"
)

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend stores each record as <BaseDir>/<key>.json.
type FileBackend struct {
	// BaseDir is the directory holding the record files
	// Default: ~/.termchat/sessions/
	BaseDir string
}

// DefaultDir returns the default directory for session records.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".termchat", "sessions"), nil
}

// NewFileBackend creates a file backend, creating baseDir if needed.
// An empty baseDir selects DefaultDir.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &FileBackend{BaseDir: baseDir}, nil
}

// Get implements Backend.
func (f *FileBackend) Get(key string) (string, bool, error) {
	path, err := f.filePath(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set implements Backend.
func (f *FileBackend) Set(key, value string) error {
	path, err := f.filePath(key)
	if err != nil {
		return err
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	return util.AtomicWriteFile(path, []byte(value), 0600)
}

// Delete implements Backend.
func (f *FileBackend) Delete(key string) error {
	path, err := f.filePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Backend.
func (f *FileBackend) Close() error {
	return nil
}

// filePath returns the file path for a key.
// Keys that would escape BaseDir are rejected.
func (f *FileBackend) filePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", &StorageError{Op: "resolve", Key: key, Message: "invalid record key"}
	}
	return filepath.Join(f.BaseDir, key+".json"), nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/storage"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a session snapshot ready for export.
type Transcript struct {
	SessionID  string          `json:"session_id"`
	ExportedAt time.Time       `json:"exported_at"`
	History    []model.Message `json:"history"`
	Sources    []model.Source  `json:"sources"`
	Cursor     int             `json:"source_cursor"`
}

// FromState builds a transcript from a loaded session state.
func FromState(sessionID string, state storage.State) *Transcript {
	return &Transcript{
		SessionID:  sessionID,
		ExportedAt: time.Now(),
		History:    model.CloneHistory(state.History),
		Sources:    append([]model.Source{}, state.Sources...),
		Cursor:     state.Cursor,
	}
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to a file format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where ExportToFile writes. Default: current directory
	OutputDir string

	// IncludeTimestamps adds per-message timestamps.
	IncludeTimestamps bool

	// SourceURL resolves a source to a link. Nil leaves sources unlinked.
	SourceURL func(model.Source) string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
	}
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"markdown", "json"}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (valid: %s)", format, strings.Join(Formats(), ", "))
	}
}

// ExportToFile writes t to a new file in opts.OutputDir and returns its path.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("transcript_%s_%s%s",
		sanitizeFilename(t.SessionID),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(dir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "session"
	}
	return string(result)
}

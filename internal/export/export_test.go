// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/storage"
)

func sampleTranscript() *Transcript {
	src := model.Source{Title: "On Method", FilePath: "content/notes/method.md", Author: "Ada", Slot: 1}
	state := storage.State{
		History: []model.Message{
			model.NewBotMessage(model.DefaultGreeting, nil),
			model.NewUserMessage("what is method?"),
			model.NewBotMessage("A way of proceeding.", []model.Source{src}),
		},
		Sources: []model.Source{src},
		Cursor:  1,
	}
	return FromState("demo", state)
}

func TestFromStateCopies(t *testing.T) {
	state := storage.DefaultState()
	tr := FromState("abc", state)

	assert.Equal(t, "abc", tr.SessionID)
	require.Len(t, tr.History, 1)
	assert.False(t, tr.ExportedAt.IsZero())

	tr.History[0].Content = "changed"
	assert.Equal(t, model.DefaultGreeting, state.History[0].Content)
}

func TestMarkdownExport(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeTimestamps = false
	opts.SourceURL = func(src model.Source) string {
		return "https://example.test/" + strings.TrimSuffix(filepath.Base(src.FilePath), ".md") + "/"
	}

	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\nsession: demo\n"))
	assert.Contains(t, md, "messages: 3")
	assert.Contains(t, md, "### You\n\nwhat is method?")
	assert.Contains(t, md, "### Bot\n\nA way of proceeding.")
	assert.Contains(t, md, "- `:1` [On Method](https://example.test/method/) (Ada)")
	assert.Contains(t, md, "## Source Registry")
	assert.NotContains(t, md, "<sub>")
}

func TestMarkdownExportEmptyHistory(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(&Transcript{SessionID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "*No messages.*")
	assert.NotContains(t, string(out), "Source Registry")
}

func TestExportNilTranscript(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
	_, err = NewJSONExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)

	var decoded struct {
		SessionID string          `json:"session_id"`
		History   []model.Message `json:"history"`
		Sources   []model.Source  `json:"sources"`
		Cursor    int             `json:"source_cursor"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "demo", decoded.SessionID)
	assert.Len(t, decoded.History, 3)
	assert.Equal(t, model.RoleUser, decoded.History[1].Role)
	assert.Equal(t, 1, decoded.Cursor)
	require.Len(t, decoded.Sources, 1)
	assert.Equal(t, "On Method", decoded.Sources[0].Title)
}

func TestForFormat(t *testing.T) {
	exp, err := ForFormat("Markdown", nil)
	require.NoError(t, err)
	assert.Equal(t, ".md", exp.FileExtension())

	exp, err = ForFormat("md", nil)
	require.NoError(t, err)
	assert.Equal(t, ".md", exp.FileExtension())

	exp, err = ForFormat("json", nil)
	require.NoError(t, err)
	assert.Equal(t, ".json", exp.FileExtension())

	_, err = ForFormat("html", nil)
	assert.ErrorContains(t, err, "unknown export format")
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	opts := DefaultOptions()
	opts.OutputDir = dir

	tr := sampleTranscript()
	path, err := ExportToFile(tr, NewJSONExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "transcript_demo_"))
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id": "demo"`)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "session", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "x-y", sanitizeFilename("x\x01y"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}

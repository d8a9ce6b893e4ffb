// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openBackends returns one backend of every kind, each rooted in a temp dir.
func openBackends(t *testing.T) map[Kind]Backend {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileBackend(filepath.Join(dir, "files"))
	require.NoError(t, err)

	db, err := NewSQLiteBackend(filepath.Join(dir, "db", "sessions.db"))
	require.NoError(t, err)

	backends := map[Kind]Backend{
		KindMemory: NewMemoryBackend(),
		KindFile:   file,
		KindSQLite: db,
	}
	t.Cleanup(func() {
		for _, b := range backends {
			b.Close()
		}
	})
	return backends
}

func TestBackends_GetSetDelete(t *testing.T) {
	for kind, b := range openBackends(t) {
		t.Run(string(kind), func(t *testing.T) {
			_, ok, err := b.Get("chat_history_s1")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should not be found")

			require.NoError(t, b.Set("chat_history_s1", `[{"type":"bot","content":"hi"}]`))
			v, ok, err := b.Get("chat_history_s1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"type":"bot","content":"hi"}]`, v)

			require.NoError(t, b.Set("chat_history_s1", "[]"))
			v, _, _ = b.Get("chat_history_s1")
			assert.Equal(t, "[]", v, "Set should replace the previous value")

			require.NoError(t, b.Delete("chat_history_s1"))
			_, ok, err = b.Get("chat_history_s1")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, b.Delete("chat_history_s1"), "deleting an absent key is not an error")
		})
	}
}

func TestFileBackend_RejectsPathKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", ".", "..", "../escape", `a\b`} {
		err := b.Set(key, "x")
		assert.Error(t, err, "key %q", key)
	}
}

func TestFileBackend_WritesPrivateFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, b.Set("chat_source_index_s1", "3"))

	info, err := os.Stat(filepath.Join(dir, "chat_source_index_s1.json"))
	require.NoError(t, err)
	if info.Mode().Perm()&0077 != 0 && os.PathSeparator == '/' {
		t.Errorf("file mode = %v, want owner-only", info.Mode().Perm())
	}
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Set("chat_sources_s1", "[]"))
	require.NoError(t, b.Close())

	b, err = NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b.Close()

	v, ok, err := b.Get("chat_sources_s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
	assert.Equal(t, path, b.Path())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"file", KindFile, false},
		{"SQLite", KindSQLite, false},
		{" memory ", KindMemory, false},
		{"", KindFile, false},
		{"redis", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.ErrorContains(t, err, "want file|sqlite|memory", "ParseKind(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen_ErrorReturnsNilBackend(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	b, err := Open(KindFile, filepath.Join(blocker, "sessions"))
	require.Error(t, err)
	assert.True(t, b == nil, "failed Open must return a nil interface, got %#v", b)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(KindMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(KindFile, filepath.Join(dir, "f"))
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = Open(KindSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	b.Close()

	_, err = Open(Kind("bogus"), dir)
	assert.Error(t, err)
}

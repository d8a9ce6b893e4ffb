// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestConfigure_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termchat.log")
	require.NoError(t, Configure("debug", path))
	t.Cleanup(func() { Close() })

	Debug("persisted", "key", "chat_history_s1")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted")
	assert.Contains(t, string(data), "chat_history_s1")
}

func TestConfigure_EnvLevel(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	require.NoError(t, Configure("", ""))

	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestSetOutput(t *testing.T) {
	require.NoError(t, Configure("info", ""))
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("backend failed", "status", 502)
	Debug("hidden")

	assert.Contains(t, buf.String(), "backend failed")
	assert.Contains(t, buf.String(), "502")
	assert.NotContains(t, buf.String(), "hidden")
}

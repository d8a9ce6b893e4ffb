// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistemic-technology/termchat/internal/backend"
	"github.com/epistemic-technology/termchat/internal/browser"
	"github.com/epistemic-technology/termchat/internal/config"
	"github.com/epistemic-technology/termchat/internal/export"
	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/session"
	"github.com/epistemic-technology/termchat/internal/sources"
	"github.com/epistemic-technology/termchat/internal/storage"
	"github.com/epistemic-technology/termchat/internal/ui/chat"
)

// =============================================================================
// FAKES
// =============================================================================

type stubTransport struct {
	resp *backend.ChatResponse
	err  error
}

func (s *stubTransport) Chat(ctx context.Context, query string) (*backend.ChatResponse, error) {
	return s.resp, s.err
}

// scriptReader feeds fixed lines, then io.EOF.
type scriptReader struct {
	lines []string
	reads int
}

func (r *scriptReader) ReadInput(prompt string) (string, error) {
	if r.reads >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.reads]
	r.reads++
	return line, nil
}

func newEngine(t *testing.T, transport session.Transport) (*session.Engine, *chat.ExitSignal) {
	t.Helper()
	exit := chat.NewExitSignal()
	engine := session.New(session.Options{
		SessionID: "cli-test",
		Transport: transport,
		Linker:    sources.NewLinker("https://example.org", "/content/"),
		Navigator: &browser.Recorder{},
		OnExit:    exit.Fire,
	})
	return engine, exit
}

func answerWithSource() *stubTransport {
	return &stubTransport{resp: &backend.ChatResponse{
		Response: "We build tools for thinking.",
		Sources: []model.Source{
			{Title: "Tools for Thought", FilePath: "/content/writing/tools.md"},
		},
	}}
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// =============================================================================
// REPL LOOP
// =============================================================================

func TestRunLoop_PrintsAnswersAndSources(t *testing.T) {
	engine, exit := newEngine(t, answerWithSource())
	reader := &scriptReader{lines: []string{"what do you do?", ":exit", "never read"}}
	var out bytes.Buffer

	err := RunLoop(context.Background(), engine, exit, reader, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Hello Professor")
	assert.Contains(t, text, "We build tools for thinking.")
	assert.Contains(t, text, "Sources:")
	assert.Contains(t, text, ":1 Tools for Thought")
	assert.Contains(t, text, "https://example.org/writing/tools/")
	assert.Equal(t, 2, reader.reads, ":exit stops the loop")
}

func TestRunLoop_EndOfInput(t *testing.T) {
	engine, exit := newEngine(t, answerWithSource())
	var out bytes.Buffer

	err := RunLoop(context.Background(), engine, exit, &scriptReader{}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Hello Professor")
}

func TestRunLoop_ResetReprintsGreeting(t *testing.T) {
	engine, exit := newEngine(t, answerWithSource())
	var out bytes.Buffer

	err := RunLoop(context.Background(), engine, exit, &scriptReader{lines: []string{":reset"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Hello Professor")))
}

func TestRunLoop_ClearPrintsNothing(t *testing.T) {
	engine, exit := newEngine(t, answerWithSource())
	var out bytes.Buffer

	err := RunLoop(context.Background(), engine, exit, &scriptReader{lines: []string{":clear"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Hello Professor")))
	assert.Empty(t, engine.History())
}

func TestTranscriptPrinter_TruncatesLongTitles(t *testing.T) {
	var out bytes.Buffer
	p := &transcriptPrinter{out: &out, linker: sources.NewLinker("https://example.org", ""), width: 20}

	p.Print(model.NewBotMessage("answer", []model.Source{
		{Title: "A very long title that will not fit", FilePath: "doc.md", Slot: 3},
	}))

	text := out.String()
	assert.Contains(t, text, ":3 A very long ti...")
	assert.NotContains(t, text, "will not fit")
	assert.Contains(t, text, "https://example.org/doc/")
}

func TestRunLoop_ReaderError(t *testing.T) {
	engine, exit := newEngine(t, answerWithSource())
	boom := errors.New("tty gone")

	err := RunLoop(context.Background(), engine, exit, readerFunc(func(string) (string, error) {
		return "", boom
	}), io.Discard)
	assert.ErrorIs(t, err, boom)
}

type readerFunc func(string) (string, error)

func (f readerFunc) ReadInput(prompt string) (string, error) { return f(prompt) }

// =============================================================================
// ASK
// =============================================================================

func TestAsk_Text(t *testing.T) {
	engine, _ := newEngine(t, answerWithSource())
	cmd, out := testCommand()

	require.NoError(t, Ask(cmd, engine, "what do you do?", false))
	assert.Contains(t, out.String(), "We build tools for thinking.")
	assert.Contains(t, out.String(), ":1 Tools for Thought")
	assert.NotContains(t, out.String(), "Hello Professor")
}

func TestAsk_JSON(t *testing.T) {
	engine, _ := newEngine(t, answerWithSource())
	cmd, out := testCommand()

	require.NoError(t, Ask(cmd, engine, "what do you do?", true))

	var result AskResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "what do you do?", result.Query)
	assert.Equal(t, "answered", result.Outcome)
	require.Len(t, result.Messages, 1)
	require.Len(t, result.Messages[0].Sources, 1)
	assert.Equal(t, AskSource{
		Slot:  1,
		Title: "Tools for Thought",
		URL:   "https://example.org/writing/tools/",
	}, result.Messages[0].Sources[0])
}

func TestAsk_BackendFailure(t *testing.T) {
	engine, _ := newEngine(t, &stubTransport{err: backend.ErrUnavailable})
	cmd, out := testCommand()

	err := Ask(cmd, engine, "hello", false)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
	assert.Contains(t, out.String(), session.ApologyMessage)
}

func TestAsk_BlankQuery(t *testing.T) {
	engine, _ := newEngine(t, answerWithSource())
	cmd, _ := testCommand()

	err := Ask(cmd, engine, "   ", false)
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestAsk_Command(t *testing.T) {
	engine, _ := newEngine(t, answerWithSource())
	cmd, out := testCommand()

	require.NoError(t, Ask(cmd, engine, ":help", false))
	assert.Contains(t, out.String(), "Available commands:")
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitGeneralError},
		{"usage", &UsageError{Message: "bad"}, ExitUsageError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "a", Message: "b"}}), ExitConfigError},
		{"timeout", &backend.ClientError{Type: backend.ErrTypeTimeout}, ExitTimeoutError},
		{"unavailable", &backend.ClientError{Type: backend.ErrTypeConnection}, ExitNetworkError},
		{"failed", ErrRequestFailed, ExitNetworkError},
		{"wrapped command", NewCommandError("reset", "open", "x", ErrRequestFailed), ExitNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewCommandError("reset", "open", "session storage unavailable", inner)
	assert.Equal(t, "reset open failed: session storage unavailable: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewCommandError("config", "set", "no key", nil)
	assert.Equal(t, "config set failed: no key", bare.Error())
}

// =============================================================================
// CONFIG AND RESET
// =============================================================================

func TestSetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, SetConfigValue(path, "backend.endpoint", "https://chat.example.org/chat"))
	require.NoError(t, SetConfigValue(path, "storage.backend", "sqlite"))

	cfg := config.Default()
	require.NoError(t, config.LoadTOML(cfg, path))
	assert.Equal(t, "https://chat.example.org/chat", cfg.Backend.Endpoint)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestSetConfigValue_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, SetConfigValue(path, "session.id", "kiosk"))

	cfg := config.Default()
	require.NoError(t, config.LoadJSON(cfg, path))
	assert.Equal(t, "kiosk", cfg.Session.ID)
}

func TestSetConfigValue_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	err := SetConfigValue(path, "no.such_key", "x")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	err = SetConfigValue(path, "storage.backend", "floppy")
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid values are not written")
}

func TestResetSession(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = dir
	cfg.Session.ID = "demo"

	be, err := storage.NewFileBackend(dir)
	require.NoError(t, err)
	store := storage.NewStore(be)
	state := storage.DefaultState()
	state.History = append(state.History, model.NewUserMessage("hi"))
	require.Equal(t, storage.Saved, store.Save("demo", state))

	cmd, out := testCommand()
	require.NoError(t, ResetSession(cmd, cfg))
	assert.Contains(t, out.String(), `Session "demo" reset.`)

	assert.Equal(t, storage.DefaultState().History[0].Content, store.Load("demo").History[0].Content)
	assert.Len(t, store.Load("demo").History, 1)
}

func TestResetSession_BadBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "floppy"
	cmd, _ := testCommand()

	err := ResetSession(cmd, cfg)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestExportSession(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = filepath.Join(dir, "sessions")
	cfg.Session.ID = "demo"

	be, err := storage.NewFileBackend(cfg.Storage.Path)
	require.NoError(t, err)
	state := storage.DefaultState()
	state.History = append(state.History, model.NewUserMessage("hi there"))
	require.Equal(t, storage.Saved, storage.NewStore(be).Save("demo", state))

	opts := export.DefaultOptions()
	opts.OutputDir = filepath.Join(dir, "out")
	cmd, out := testCommand()
	require.NoError(t, ExportSession(cmd, cfg, "markdown", opts))
	assert.Contains(t, out.String(), "Exported 2 messages to ")

	matches, err := filepath.Glob(filepath.Join(opts.OutputDir, "transcript_demo_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hi there")
}

func TestExportSession_UnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	cmd, _ := testCommand()

	err := ExportSession(cmd, cfg, "pdf", export.DefaultOptions())
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// RUNTIME
// =============================================================================

func TestNewRuntime_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(backend.ChatResponse{Response: "echo: " + req.Query})
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Backend.Endpoint = srv.URL
	cfg.Storage.Backend = "memory"
	cfg.Session.ID = "rt"

	rt, err := NewRuntime(cfg, &browser.Recorder{})
	require.NoError(t, err)
	defer rt.Close()

	outcome, err := rt.Engine.Submit(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeAnswered, outcome)
	history := rt.Engine.History()
	assert.Equal(t, "echo: ping", history[len(history)-1].Content)
	assert.True(t, rt.Store.Available())
}

func TestRuntime_ApplyConfigUpdatesEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"

	rt, err := NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	next := cfg.Clone()
	next.Backend.Endpoint = "http://localhost:9999/chat"
	rt.applyConfig(next)
	assert.Equal(t, "http://localhost:9999/chat", rt.Client.Endpoint())
}

func TestNewRuntime_UnknownStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "floppy"

	_, err := NewRuntime(cfg, nil)
	assert.Error(t, err)
}

func TestRuntime_WatchConfigMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	rt, err := NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	rt.WatchConfig("")
	rt.WatchConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Nil(t, rt.watcher)
}

// =============================================================================
// COMMAND TREE
// =============================================================================

func newTestApp() (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		Navigator: &browser.Recorder{},
		Stdin:     bytes.NewReader(nil),
		Stdout:    &out,
		Stderr:    io.Discard,
	}, &out
}

func TestRootCommand_Version(t *testing.T) {
	app, out := newTestApp()
	root := app.NewRootCommand()
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "termchat "+Version+"\n", out.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	app, _ := newTestApp()
	root := app.NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tui", "repl", "ask", "reset", "export", "config", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "session", "log-level", "log-file", "storage"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommand_ConfigGet(t *testing.T) {
	t.Setenv("CHAT_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SetConfigValue(path, "backend.endpoint", "https://chat.example.org/chat"))

	app, out := newTestApp()
	root := app.NewRootCommand()
	root.SetArgs([]string{"--config", path, "config", "get", "backend.endpoint"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "https://chat.example.org/chat\n", out.String())
}

func TestFormatKeyTable(t *testing.T) {
	cfg := config.Default()
	cfg.Session.ID = "demo"

	keys := config.Keys()
	lines := strings.Split(strings.TrimSuffix(FormatKeyTable(cfg), "\n"), "\n")
	require.Len(t, lines, len(keys))

	width := 0
	for _, key := range keys {
		width = max(width, len(key))
	}
	for i, key := range keys {
		prefix := key + strings.Repeat(" ", width-len(key)) + "  "
		assert.True(t, strings.HasPrefix(lines[i], prefix), "misaligned: %q", lines[i])
	}
	assert.Contains(t, lines, "session.id"+strings.Repeat(" ", width-len("session.id")+2)+"demo")
}

func TestRootCommand_SessionFlagOverrides(t *testing.T) {
	t.Setenv("TERMCHAT_SESSION", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SetConfigValue(path, "session.id", "from-file"))

	app, out := newTestApp()
	root := app.NewRootCommand()
	root.SetArgs([]string{"--config", path, "--session", "from-flag", "config", "get", "session.id"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "from-flag\n", out.String())
}

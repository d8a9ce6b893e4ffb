// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the chat session engine.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/epistemic-technology/termchat/internal/backend"
	"github.com/epistemic-technology/termchat/internal/browser"
	"github.com/epistemic-technology/termchat/internal/commands"
	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/sources"
	"github.com/epistemic-technology/termchat/internal/storage"
)

// ApologyMessage is appended when a backend request fails.
const ApologyMessage = "Sorry, an error occurred while processing your request."

// ErrBusy is returned by Submit while a backend request is outstanding.
var ErrBusy = errors.New("session is awaiting a response")

// errNoTransport is reported when the engine has no backend to ask.
var errNoTransport = errors.New("no chat transport configured")

// =============================================================================
// STATES AND OUTCOMES
// =============================================================================

// State is the engine's request state.
type State int

const (
	// Idle accepts submissions.
	Idle State = iota
	// AwaitingResponse rejects submissions until the backend answers.
	AwaitingResponse
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	default:
		return "unknown"
	}
}

// Outcome reports what a submission did.
type Outcome int

const (
	// OutcomeIgnored means the input was blank; nothing changed.
	OutcomeIgnored Outcome = iota
	// OutcomeRejected means a request was outstanding; nothing changed.
	OutcomeRejected
	// OutcomeLocal means the input was a command (known or not).
	OutcomeLocal
	// OutcomeAnswered means the backend answered.
	OutcomeAnswered
	// OutcomeFailed means the backend failed and the apology was appended.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeLocal:
		return "local"
	case OutcomeAnswered:
		return "answered"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Transport sends a query to the chatbot backend.
type Transport interface {
	Chat(ctx context.Context, query string) (*backend.ChatResponse, error)
}

// endpointSetter is implemented by transports whose URL can change at runtime.
type endpointSetter interface {
	SetEndpoint(endpoint string)
}

// Options holds the engine's collaborators. Every field is optional.
type Options struct {
	// SessionID namespaces persisted records (default: a new UUID)
	SessionID string

	// Transport answers non-command input
	Transport Transport

	// Store persists state; nil runs purely in memory
	Store *storage.Store

	// Linker resolves source paths to page URLs
	Linker *sources.Linker

	// Navigator opens URLs requested by :contact and :N
	Navigator browser.Navigator

	// OnExit is called when :exit is submitted
	OnExit func()

	// ContactPath overrides the path opened by :contact
	ContactPath string

	// Commands replaces the built-in command table
	Commands *commands.Registry
}

// NewSessionID returns a random session id.
func NewSessionID() string {
	return uuid.New().String()
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the chat session state machine.
//
// The Engine is safe for concurrent use. The lock is never held across a
// backend round-trip or a navigation/exit side effect.
type Engine struct {
	mu sync.Mutex

	sessionID string
	state     State
	history   []model.Message
	registry  *sources.Registry
	lastSave  storage.SaveResult

	transport   Transport
	store       *storage.Store
	linker      *sources.Linker
	navigator   browser.Navigator
	onExit      func()
	contactPath string
	commands    *commands.Registry
	parser      *commands.Parser
}

// New creates an engine and restores its session from the store.
func New(opts Options) *Engine {
	if opts.SessionID == "" {
		opts.SessionID = NewSessionID()
	}
	if opts.Store == nil {
		opts.Store = storage.NewStore(nil)
	}
	if opts.Commands == nil {
		opts.Commands = commands.NewRegistry()
	}

	e := &Engine{
		sessionID:   opts.SessionID,
		state:       Idle,
		transport:   opts.Transport,
		store:       opts.Store,
		linker:      opts.Linker,
		navigator:   opts.Navigator,
		onExit:      opts.OnExit,
		contactPath: opts.ContactPath,
		commands:    opts.Commands,
		parser:      commands.NewParser(opts.Commands),
		lastSave:    storage.SkippedNoStorage,
	}

	restored := e.store.Load(e.sessionID)
	e.history = restored.History
	e.registry = sources.Restore(restored.Sources, restored.Cursor)

	logger.Debug("session restored", "session", e.sessionID,
		"messages", len(e.history), "sources", e.registry.Len())
	return e
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit handles one line of user input.
//
// Blank input is ignored. While a request is outstanding Submit returns
// OutcomeRejected and ErrBusy without changing anything. Backend failures
// are not returned as errors; they produce OutcomeFailed and the apology.
func (e *Engine) Submit(ctx context.Context, text string) (Outcome, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return OutcomeIgnored, nil
	}

	e.mu.Lock()
	if e.state == AwaitingResponse {
		e.mu.Unlock()
		return OutcomeRejected, ErrBusy
	}

	// The transcript always shows the literal input, commands included
	userMsg := model.NewUserMessage(text)
	e.appendLocked(userMsg)

	if result := e.parser.Parse(input); result.IsCommand {
		return e.runCommandLocked(result), nil
	}

	logger.Debug("sending chat request", "session", e.sessionID, "query", userMsg.Preview(60))

	e.state = AwaitingResponse
	transport := e.transport
	e.mu.Unlock()

	resp, err := roundTrip(ctx, transport, input)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.state = Idle }()

	if err != nil {
		logger.Warn("chat request failed", "session", e.sessionID, "err", err)
		e.appendLocked(model.NewBotMessage(ApologyMessage, nil))
		return OutcomeFailed, nil
	}

	cited := make([]model.Source, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		if e.registry.Full() {
			logger.Debug("source registry full, overwriting slot", "slot", e.registry.Cursor()+1)
		}
		cited = append(cited, e.registry.Add(src))
	}
	e.appendLocked(model.NewBotMessage(resp.Response, cited))
	return OutcomeAnswered, nil
}

// runCommandLocked executes a command and releases the lock before running
// the side effects it requested.
func (e *Engine) runCommandLocked(result commands.ParseResult) Outcome {
	target := &lockedSession{engine: e}
	cctx := commands.NewContext(target, e.linker)
	cctx.Registry = e.commands
	cctx.ContactPath = e.contactPath

	if !result.Known() {
		logger.Debug("ignoring unknown command", "input", result.RawInput)
	}
	e.commands.Execute(cctx, result)
	if target.mutated && !target.reset {
		e.persistLocked()
	}

	navigator, onExit := e.navigator, e.onExit
	e.mu.Unlock()

	if url := cctx.NavigateTo(); url != "" {
		if navigator == nil {
			logger.Info("navigation requested with no browser", "url", url)
		} else if err := navigator.Open(url); err != nil {
			logger.Warn("failed to open url", "url", url, "err", err)
		}
	}
	if cctx.ExitRequested() && onExit != nil {
		onExit()
	}
	return OutcomeLocal
}

// roundTrip calls the transport. A panicking transport is reported as an
// error so the engine always returns to Idle.
func roundTrip(ctx context.Context, transport Transport, query string) (resp *backend.ChatResponse, err error) {
	if transport == nil {
		return nil, errNoTransport
	}
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("transport panic: %v", r)
		}
	}()

	resp, err = transport.Chat(ctx, query)
	if err == nil && resp == nil {
		err = errors.New("empty response from transport")
	}
	return resp, err
}

// appendLocked appends a message and persists.
func (e *Engine) appendLocked(msg model.Message) {
	e.history = append(e.history, msg)
	e.persistLocked()
}

// persistLocked saves the current state.
func (e *Engine) persistLocked() {
	e.lastSave = e.store.Save(e.sessionID, storage.State{
		History: e.history,
		Sources: e.registry.List(),
		Cursor:  e.registry.Cursor(),
	})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// History returns a copy of the conversation.
func (e *Engine) History() []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneHistory(e.history)
}

// Sources returns the registered sources in slot order.
func (e *Engine) Sources() []model.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.List()
}

// SourceCursor returns the registry's next overwrite position.
func (e *Engine) SourceCursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Cursor()
}

// State returns the request state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsLoading reports whether a backend request is outstanding.
func (e *Engine) IsLoading() bool {
	return e.State() == AwaitingResponse
}

// SessionID returns the id that namespaces persisted records.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// LastSave returns the result of the most recent save.
func (e *Engine) LastSave() storage.SaveResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSave
}

// Linker returns the source linker.
func (e *Engine) Linker() *sources.Linker {
	return e.linker
}

// SourceURL resolves a source to its page URL.
func (e *Engine) SourceURL(src model.Source) string {
	return e.linker.SourceURL(src)
}

// SetEndpoint points the transport at a new backend URL when it supports
// that. It reports whether the endpoint was applied.
func (e *Engine) SetEndpoint(endpoint string) bool {
	e.mu.Lock()
	transport := e.transport
	e.mu.Unlock()

	setter, ok := transport.(endpointSetter)
	if !ok {
		return false
	}
	setter.SetEndpoint(endpoint)
	logger.Info("chat endpoint updated", "endpoint", endpoint)
	return true
}

// =============================================================================
// COMMAND TARGET
// =============================================================================

// lockedSession exposes the engine to command handlers. Its methods assume
// the engine lock is held by Submit.
type lockedSession struct {
	engine  *Engine
	mutated bool
	reset   bool
}

func (s *lockedSession) AppendBotMessage(content string, cited []model.Source) {
	s.engine.history = append(s.engine.history, model.NewBotMessage(content, cited))
	s.mutated = true
}

func (s *lockedSession) ClearHistory() {
	s.engine.history = []model.Message{}
	s.mutated = true
}

// ResetSession erases the persisted records. They stay absent until the
// next change, which loads as the same default state.
func (s *lockedSession) ResetSession() {
	e := s.engine
	state := e.store.Reset(e.sessionID)
	e.history = state.History
	e.registry = sources.Restore(state.Sources, state.Cursor)
	s.mutated = true
	s.reset = true
}

func (s *lockedSession) Sources() *sources.Registry {
	s.mutated = true
	return s.engine.registry
}

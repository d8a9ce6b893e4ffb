// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epistemic-technology/termchat/internal/commands"
	"github.com/epistemic-technology/termchat/internal/session"
	"github.com/epistemic-technology/termchat/internal/ui/styles"
)

// Options configures a chat Model.
type Options struct {
	Engine *session.Engine
	Theme  *styles.Theme

	// Exit is fired by the engine's OnExit callback
	Exit *ExitSignal

	// Markdown enables glamour rendering of bot messages
	Markdown bool

	// WordWrap caps the render width (0 follows the terminal)
	WordWrap int

	// Commands supplies completions; defaults to the built-in table
	Commands *commands.Registry
}

// Model is the Bubble Tea model for the chat window.
type Model struct {
	engine     *session.Engine
	theme      *styles.Theme
	keys       KeyMap
	exit       *ExitSignal
	renderer   *Renderer
	completer  *commands.Completer
	completion *commands.CompletionState

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width    int
	height   int
	wordWrap int

	loading  bool
	rendered int
	lastErr  error
	quitting bool
}

// New creates a chat model over engine.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	registry := opts.Commands
	if registry == nil {
		registry = commands.NewRegistry()
	}

	ti := textinput.New()
	ti.Prompt = styles.StatusIndicators.Prompt
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Placeholder = "Ask a question, or type :help"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(styles.CursorSpinner.Bubbles()),
		spinner.WithStyle(theme.Spinner),
	)

	m := Model{
		engine:     opts.Engine,
		theme:      theme,
		keys:       DefaultKeyMap(),
		exit:       opts.Exit,
		renderer:   NewRenderer(theme.GlamourStyle(), 80, opts.Markdown),
		completer:  commands.NewCompleter(registry),
		completion: commands.NewCompletionState(),
		input:      ti,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		wordWrap:   opts.WordWrap,
	}
	m.refreshTranscript(true)
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitResultMsg:
		return m.handleSubmitResult(msg)

	case ErrorMsg:
		m.lastErr = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		// The user line is appended before the round-trip finishes
		m.refreshTranscript(false)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	const (
		headerHeight    = 1
		inputAreaHeight = 3 // separator + input + completions/spinner
		footerHeight    = 1
	)

	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	vpHeight := m.height - headerHeight - inputAreaHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := m.width
	if vpWidth < 1 {
		vpWidth = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight

	inputWidth := m.width - 4 - len(m.input.Prompt)
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.renderer.SetWidth(m.contentWidth())
	m.refreshTranscript(true)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if cmdText, ok := m.keys.shortcutCommand(msg); ok {
		return m.submit(cmdText)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		m.completion.Clear()
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keys.Complete):
		return m.handleTab()

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	m.completion.Clear()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleTab starts or cycles command completion.
func (m Model) handleTab() (tea.Model, tea.Cmd) {
	if m.completion.Active() {
		m.completion.Next()
	} else {
		m.completion.Update(m.input.Value(), m.completer.Complete(m.input.Value()))
	}
	if value := m.completion.Accept(); value != "" {
		m.input.SetValue(value)
		m.input.CursorEnd()
	}
	return m, nil
}

// submit hands input to the engine in the background. While a request is
// outstanding the input stays in the box.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if m.loading || m.engine == nil {
		return m, nil
	}
	m.input.Reset()
	m.lastErr = nil
	m.loading = true
	return m, tea.Batch(m.SubmitCmd(text), m.spinner.Tick)
}

// SubmitCmd returns a command that runs text through the engine.
func (m Model) SubmitCmd(text string) tea.Cmd {
	engine := m.engine
	exit := m.exit
	return func() tea.Msg {
		outcome, err := engine.Submit(context.Background(), text)
		return SubmitResultMsg{
			Input:   text,
			Outcome: outcome,
			Err:     err,
			Exit:    exit.Fired(),
		}
	}
}

func (m Model) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.refreshTranscript(true)

	if msg.Err != nil {
		m.lastErr = msg.Err
		if msg.Outcome == session.OutcomeRejected {
			m.input.SetValue(msg.Input)
		}
	}
	if msg.Exit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// refreshTranscript re-renders the viewport. Unless force is set it skips
// the work when the history length is unchanged.
func (m *Model) refreshTranscript(force bool) {
	if m.engine == nil {
		return
	}
	history := m.engine.History()
	if !force && len(history) == m.rendered {
		return
	}
	m.rendered = len(history)
	m.viewport.SetContent(m.renderTranscript(history))
	m.viewport.GotoBottom()
}

func (m Model) contentWidth() int {
	width := m.width - 2
	if m.wordWrap > 0 && m.wordWrap < width {
		width = m.wordWrap
	}
	if width < 20 {
		width = 20
	}
	return width
}

// =============================================================================
// ACCESSORS
// =============================================================================

// IsLoading reports whether a submission is outstanding.
func (m Model) IsLoading() bool {
	return m.loading
}

// Quitting reports whether the model asked the program to exit.
func (m Model) Quitting() bool {
	return m.quitting
}

// InputValue returns the text in the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// SetInputValue replaces the text in the input box.
func (m *Model) SetInputValue(s string) {
	m.input.SetValue(s)
}

// LastError returns the most recent error shown in the footer.
func (m Model) LastError() error {
	return m.lastErr
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the colon command system for the chat session.
package commands

import (
	"strconv"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/sources"
)

// Prefix marks input as a command.
const Prefix = ":"

// DefaultContactPath is resolved against the site origin by :contact.
const DefaultContactPath = "contact/"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a colon command that can be executed.
type Command struct {
	// Name is the command text after the prefix (e.g., "help")
	Name string

	// Description is shown in help and completion
	Description string

	// Handler is the function that executes the command
	Handler func(ctx *Context)

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// Display returns the command as typed, e.g. ":help".
func (c *Command) Display() string {
	return Prefix + c.Name
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	order    []string
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry, replacing any with the same name.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Get retrieves a command by exact name. Returns nil when not found.
func (r *Registry) Get(name string) *Command {
	return r.commands[name]
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Visible returns the commands shown in help, in registration order.
func (r *Registry) Visible() []*Command {
	var cmds []*Command
	for _, cmd := range r.All() {
		if !cmd.Hidden {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Execute runs the command in result. It reports whether a handler ran;
// an unknown command is a silent no-op.
func (r *Registry) Execute(ctx *Context, result ParseResult) bool {
	if !result.IsCommand || result.Command == nil || result.Command.Handler == nil {
		return false
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	result.Command.Handler(ctx)
	return true
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "help",
		Description: "Show this help",
		Category:    "Navigation",
		Handler:     HandleHelp,
	})

	r.Register(&Command{
		Name:        "about",
		Description: "About Epistemic Technology",
		Category:    "Navigation",
		Handler:     HandleAbout,
	})

	r.Register(&Command{
		Name:        "contact",
		Description: "Contact information",
		Category:    "Navigation",
		Handler:     HandleContact,
	})

	r.Register(&Command{
		Name:        "clear",
		Description: "Clear the chat history",
		Category:    "Conversation",
		Handler:     HandleClear,
	})

	r.Register(&Command{
		Name:        "reset",
		Description: "Erase the saved session and start over",
		Category:    "Conversation",
		Handler:     HandleReset,
	})

	r.Register(&Command{
		Name:        "sources",
		Description: "List cited sources",
		Category:    "Sources",
		Handler:     HandleSources,
	})

	r.Register(&Command{
		Name:        "exit",
		Description: "Exit the chat",
		Category:    "Navigation",
		Handler:     HandleExit,
	})

	// :1 .. :9 open the source in that slot
	for slot := 1; slot <= sources.Capacity; slot++ {
		r.Register(&Command{
			Name:        strconv.Itoa(slot),
			Description: "Open source " + strconv.Itoa(slot),
			Category:    "Sources",
			Hidden:      true,
			Handler:     openSlotHandler(slot),
		})
	}
}

// =============================================================================
// COMMAND CONTEXT
// =============================================================================

// Session is the chat state a handler may mutate.
// Implementations are called with their own lock already held.
type Session interface {
	// AppendBotMessage appends a bot message citing the given sources.
	AppendBotMessage(content string, cited []model.Source)

	// ClearHistory replaces the history with an empty sequence.
	ClearHistory()

	// ResetSession erases persisted records and restores the greeting
	// history with an empty source registry.
	ResetSession()

	// Sources returns the live source registry.
	Sources() *sources.Registry
}

// Context provides dependencies to command handlers and collects the side
// effects they request. Side effects are executed by the caller once the
// handler returns.
type Context struct {
	// Session is the chat state the command acts on
	Session Session

	// Linker resolves source paths to page URLs
	Linker *sources.Linker

	// Registry is used by :help to list commands
	Registry *Registry

	// ContactPath overrides DefaultContactPath when set
	ContactPath string

	navigateTo    string
	exitRequested bool
}

// NewContext creates a command context. linker may be nil.
func NewContext(sess Session, linker *sources.Linker) *Context {
	return &Context{
		Session: sess,
		Linker:  linker,
	}
}

// Navigate requests that url be opened once the command completes.
func (c *Context) Navigate(url string) {
	c.navigateTo = url
}

// NavigateTo returns the requested navigation URL, or "".
func (c *Context) NavigateTo() string {
	return c.navigateTo
}

// RequestExit asks the front end to close the chat.
func (c *Context) RequestExit() {
	c.exitRequested = true
}

// ExitRequested reports whether :exit ran.
func (c *Context) ExitRequested() bool {
	return c.exitRequested
}

// contactURL returns the resolved contact page URL.
func (c *Context) contactURL() string {
	path := c.ContactPath
	if path == "" {
		path = DefaultContactPath
	}
	return c.Linker.Resolve(path)
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}

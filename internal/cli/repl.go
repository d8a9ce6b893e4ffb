// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-mode chat for termchat.
//
// USABILITY: Supports arrow keys for history navigation and line editing,
// and Tab completion of command names. When stdin is not a terminal the
// loop reads plain lines, so scripted input works too.
//
// Examples:
//   termchat repl
//   printf 'what do you write about?\n:1\n' | termchat repl
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/epistemic-technology/termchat/internal/commands"
	"github.com/epistemic-technology/termchat/internal/config"
	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/session"
	"github.com/epistemic-technology/termchat/internal/sources"
	"github.com/epistemic-technology/termchat/internal/ui/chat"
	"github.com/epistemic-technology/termchat/internal/ui/styles"
	"github.com/epistemic-technology/termchat/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Phosphor).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(styles.BotMessageFg)

	markerStyle = lipgloss.NewStyle().
			Foreground(styles.SourceMarkerFg).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(styles.LinkColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// LineReader reads one line of input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with persisted input history and command
// completion.
func NewChatCLI(completer *commands.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, c := range completer.Complete(input) {
			out = append(out, c.Value)
		}
		return out
	})

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "input_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// COMMAND
// =============================================================================

func (app *App) newREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat line by line",
		Long: `Chat line by line with input history.

Type :exit or press Ctrl+D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runREPL(cmd)
		},
	}
}

func (app *App) runREPL(cmd *cobra.Command) error {
	rt, path, err := app.openRuntime(false)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.WatchConfig(path)

	logger.Debug("starting repl", "version", Version, "session", rt.Engine.SessionID())

	reader := NewChatCLI(commands.NewCompleter(commands.NewRegistry()))
	defer reader.Close()

	return RunLoop(cmd.Context(), rt.Engine, rt.Exit, reader, cmd.OutOrStdout())
}

// =============================================================================
// LOOP
// =============================================================================

// RunLoop prints the restored transcript, then submits lines until :exit,
// end of input or Ctrl+C. Only messages appended by each submission are
// printed after it.
func RunLoop(ctx context.Context, engine *session.Engine, exit *chat.ExitSignal, in LineReader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	printer := &transcriptPrinter{out: out, linker: engine.Linker(), width: GetTerminalWidth()}

	history := engine.History()
	for _, msg := range history {
		printer.Print(msg)
	}

	for {
		input, err := in.ReadInput(promptStyle.Render(styles.StatusIndicators.Prompt))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		before := engine.History()
		if _, err := engine.Submit(ctx, input); err != nil {
			fmt.Fprintln(out, mutedStyle.Render(err.Error()))
			continue
		}
		after := engine.History()

		// :clear and :reset shrink the history; show the fresh transcript
		start := len(before)
		if len(after) <= len(before) {
			start = 0
		}
		for _, msg := range after[start:] {
			if msg.Role == model.RoleUser {
				continue
			}
			printer.Print(msg)
		}

		if exit.Fired() {
			return nil
		}
	}
}

// transcriptPrinter writes messages in line mode.
type transcriptPrinter struct {
	out    io.Writer
	linker *sources.Linker
	width  int
}

func (p *transcriptPrinter) Print(msg model.Message) {
	if msg.Role == model.RoleUser {
		fmt.Fprintln(p.out, promptStyle.Render(styles.StatusIndicators.Prompt)+msg.Content)
		return
	}
	fmt.Fprintln(p.out, botStyle.Render(msg.Content))
	if !msg.HasSources() {
		return
	}
	fmt.Fprintln(p.out, mutedStyle.Render("Sources:"))
	for _, src := range msg.Sources {
		fmt.Fprintf(p.out, "%s %s\n    %s\n",
			markerStyle.Render(src.Marker()),
			util.TruncateWidth(util.SingleLine(src.DisplayTitle()), p.width-len(src.Marker())-1),
			urlStyle.Render(p.linker.SourceURL(src)))
	}
}

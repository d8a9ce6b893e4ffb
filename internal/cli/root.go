// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Command tree and global flags for termchat.
//
// Running termchat with no subcommand opens the full-screen chat when both
// stdin and stdout are terminals, and the line-mode REPL otherwise, so
// `echo "hello" | termchat` works as a one-shot pipe.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/epistemic-technology/termchat/internal/browser"
	"github.com/epistemic-technology/termchat/internal/config"
	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/storage"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Flags holds the global command-line flags.
type Flags struct {
	ConfigPath string
	SessionID  string
	LogLevel   string
	LogFile    string
	Storage    string
}

// App carries state shared by every subcommand.
type App struct {
	Flags Flags

	// Navigator opens URLs; defaults to the system browser
	Navigator browser.Navigator

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp creates an App bound to the process streams.
func NewApp() *App {
	return &App{
		Navigator: browser.NewSystem(),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Execute runs the command line and returns the first error.
func Execute() error {
	lipgloss.SetColorProfile(GetColorProfile())
	return NewApp().NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func (app *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termchat",
		Short: "Terminal chat with a retrieval-augmented chatbot",
		Long: `termchat talks to a retrieval-augmented chatbot from the terminal.

Answers cite the documents they draw on; open a cited source with :1 .. :9.
Type :help inside a session for the full command list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if Interactive() {
				return app.runTUI(cmd)
			}
			return app.runREPL(cmd)
		},
	}
	rootCmd.SetIn(app.Stdin)
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Flags.ConfigPath, "config", "", "Config file (default ~/.termchat/config.toml)")
	flags.StringVar(&app.Flags.SessionID, "session", "", "Session id that namespaces saved history")
	flags.StringVar(&app.Flags.LogLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&app.Flags.LogFile, "log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&app.Flags.Storage, "storage", "", "Session storage backend ("+storage.KindList("|")+")")

	rootCmd.AddCommand(
		app.newTUICommand(),
		app.newREPLCommand(),
		app.newAskCommand(),
		app.newResetCommand(),
		app.newExportCommand(),
		app.newConfigCommand(),
		app.newVersionCommand(),
	)
	return rootCmd
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the config file and applies flag overrides. It returns
// the path worth watching for changes.
func (app *App) loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = app.Flags.ConfigPath
		err  error
	)

	if path != "" {
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return nil, "", err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, "", err
		}
		if err != nil {
			logger.Warn("config file ignored, using defaults", "err", err)
		}
		path, _ = config.ConfigPathTOML()
	}

	if app.Flags.SessionID != "" {
		cfg.Session.ID = app.Flags.SessionID
	}
	if app.Flags.LogLevel != "" {
		cfg.Log.Level = app.Flags.LogLevel
	}
	if app.Flags.LogFile != "" {
		cfg.Log.File = app.Flags.LogFile
	}
	if app.Flags.Storage != "" {
		cfg.Storage.Backend = app.Flags.Storage
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// setupLogging configures the global logger. Full-screen mode always logs
// to a file so log lines do not tear the screen.
func (app *App) setupLogging(cfg *config.Config, fullScreen bool) error {
	file := cfg.Log.File
	if file == "" && fullScreen {
		file = config.DefaultLogFile()
	}
	return logger.Configure(cfg.Log.Level, file)
}

// openRuntime loads config, configures logging and wires a session.
func (app *App) openRuntime(fullScreen bool) (*Runtime, string, error) {
	cfg, path, err := app.loadConfig()
	if err != nil {
		return nil, "", err
	}
	if err := app.setupLogging(cfg, fullScreen); err != nil {
		return nil, "", NewCommandError("termchat", "start", "cannot open log file", err)
	}
	rt, err := NewRuntime(cfg, app.Navigator)
	if err != nil {
		return nil, "", err
	}
	return rt, path, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/ui/chat"
	"github.com/epistemic-technology/termchat/internal/ui/styles"
)

func (app *App) newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat window",
		Long: `Open the full-screen chat window.

F1 :help  F2 :about  F3 :contact  F4 :exit
Tab completes command names; Ctrl+C quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTUI(cmd)
		},
	}
}

func (app *App) runTUI(cmd *cobra.Command) error {
	rt, path, err := app.openRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.WatchConfig(path)

	logger.Info("starting tui", "version", Version, "session", rt.Engine.SessionID())

	model := chat.New(chat.Options{
		Engine:   rt.Engine,
		Theme:    styles.NewThemeFor(rt.Config.UI.Theme),
		Exit:     rt.Exit,
		Markdown: rt.Config.UI.Markdown,
		WordWrap: rt.Config.UI.WordWrap,
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil {
		return NewCommandError("tui", "run", "terminal program stopped", err)
	}
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat window.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Submit   key.Binding
	Complete key.Binding
	Help     key.Binding
	About    key.Binding
	Contact  key.Binding
	Exit     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings. F1 to F4 mirror the
// navigation bar of the web dialog.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete command"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", ":help"),
		),
		About: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", ":about"),
		),
		Contact: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", ":contact"),
		),
		Exit: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("F4", ":exit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// FooterBindings returns the bindings shown in the footer bar.
func (k KeyMap) FooterBindings() []key.Binding {
	return []key.Binding{k.Help, k.About, k.Contact, k.Exit}
}

// shortcutCommand returns the command input bound to a function key.
func (k KeyMap) shortcutCommand(msg tea.KeyMsg) (string, bool) {
	for _, b := range k.FooterBindings() {
		if key.Matches(msg, b) {
			return b.Help().Desc, true
		}
	}
	return "", false
}

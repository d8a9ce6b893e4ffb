// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat window.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// WINDOW STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserMessage lipgloss.Style
	BotMessage  lipgloss.Style
	ErrorText   lipgloss.Style

	// ==========================================================================
	// SOURCE LIST STYLES
	// ==========================================================================

	SourcesHeading lipgloss.Style
	SourceMarker   lipgloss.Style
	SourceTitle    lipgloss.Style
	SourceURL      lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	Spinner          lipgloss.Style
	ThinkingText     lipgloss.Style

	// ==========================================================================
	// COMPLETION STYLES
	// ==========================================================================

	CompletionItem     lipgloss.Style
	CompletionSelected lipgloss.Style
	CompletionDesc     lipgloss.Style

	// ==========================================================================
	// FOOTER STYLES
	// ==========================================================================

	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// NewThemeFor creates a theme for a configured mode. "dark" and "light"
// override background detection; anything else detects.
func NewThemeFor(mode string) *Theme {
	t := NewTheme()
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "dark":
		t.IsDark = true
	case "light":
		t.IsDark = false
	default:
		return t
	}
	lipgloss.SetHasDarkBackground(t.IsDark)
	return t
}

// GlamourStyle returns the glamour standard style name matching the
// terminal background.
func (t *Theme) GlamourStyle() string {
	if t == nil || t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Foreground(Phosphor).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Phosphor)

	t.UserMessage = lipgloss.NewStyle().Foreground(UserMessageFg)
	t.BotMessage = lipgloss.NewStyle().Foreground(BotMessageFg)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)

	t.SourcesHeading = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)
	t.SourceMarker = lipgloss.NewStyle().
		Bold(true).
		Foreground(SourceMarkerFg)
	t.SourceTitle = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SourceURL = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Phosphor)
	t.InputText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Phosphor)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.CompletionItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.CompletionSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Phosphor).
		Padding(0, 1)
	t.CompletionDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Phosphor)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

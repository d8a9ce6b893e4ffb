// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// TERMINAL ACCENT COLORS
// =============================================================================

// Phosphor - Primary accent, prompt and bot text
var Phosphor = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// PhosphorDim - Secondary green for markers and borders
var PhosphorDim = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#22C55E"}

// Cyan - Commands, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Amber - Warnings, loading indicator
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0B0F0C"}

// SurfaceDim - Header and footer bars
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F0FDF4", Dark: "#111A13"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#1F3324"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#D1FAE5"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#A7C4B0"}

// TextMuted - Hints, URLs
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#5F7A66"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0B0F0C"}

// =============================================================================
// MESSAGE COLORS
// =============================================================================

// UserMessageFg - User line text
var UserMessageFg = Cyan

// BotMessageFg - Bot line text
var BotMessageFg = Phosphor

// SourceMarkerFg - The ":N" marker in a source list
var SourceMarkerFg = Amber

// LinkColor - Source URLs, underlined in the theme
var LinkColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// Palette lists every named color, for previews and tests.
func Palette() map[string]lipgloss.AdaptiveColor {
	return map[string]lipgloss.AdaptiveColor{
		"phosphor":       Phosphor,
		"phosphor_dim":   PhosphorDim,
		"cyan":           Cyan,
		"amber":          Amber,
		"rose":           Rose,
		"surface":        Surface,
		"surface_dim":    SurfaceDim,
		"overlay":        Overlay,
		"text_primary":   TextPrimary,
		"text_secondary": TextSecondary,
		"text_muted":     TextMuted,
		"text_inverse":   TextInverse,
		"link":           LinkColor,
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the termchat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The palette is a green-on-dark terminal look:

	Phosphor    - prompt and bot text
	Cyan        - user text
	Amber       - source markers and the loading line
	Rose        - errors
	LinkColor   - source URLs

The Theme struct carries runtime detection and the composed styles:

	theme := styles.NewTheme()
	r, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))

Spinner configurations convert to bubbles spinners:

	s := spinner.New(spinner.WithSpinner(styles.CursorSpinner.Bubbles()))
*/
package styles

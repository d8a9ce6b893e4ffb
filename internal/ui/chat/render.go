// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/ui/styles"
)

// =============================================================================
// BOT MESSAGE RENDERER
// =============================================================================

// Renderer turns bot message content into terminal output.
//
// With markdown enabled the content goes through glamour. Otherwise the
// text is kept as written and only fenced code blocks are highlighted.
type Renderer struct {
	markdown bool
	style    string
	width    int
	term     *glamour.TermRenderer
}

// NewRenderer creates a renderer. style is a glamour standard style name
// ("dark", "light", "notty").
func NewRenderer(style string, width int, markdown bool) *Renderer {
	r := &Renderer{markdown: markdown, style: style}
	r.SetWidth(width)
	return r
}

// Markdown reports whether glamour rendering is enabled.
func (r *Renderer) Markdown() bool {
	return r.markdown
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// SetWidth changes the wrap width, rebuilding the glamour renderer.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width && (r.term != nil || !r.markdown) {
		return
	}
	r.width = width
	if !r.markdown {
		return
	}

	style := r.style
	if style == "" {
		style = "dark"
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable", "err", err)
		r.term = nil
		return
	}
	r.term = term
}

// Render renders content for display.
func (r *Renderer) Render(content string) string {
	if r.markdown && r.term != nil {
		out, err := r.term.Render(content)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		logger.Debug("markdown render failed", "err", err)
	}
	return renderCodeBlocks(content, r.width)
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

// renderCodeBlocks replaces fenced code blocks with highlighted versions.
func renderCodeBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var inCodeBlock bool
	var codeLines []string
	var language string

	flush := func() {
		result = append(result, renderCodeBlock(language, strings.Join(codeLines, "\n"), maxWidth))
		codeLines = nil
		language = ""
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```") && inCodeBlock:
			flush()
			inCodeBlock = false
		case strings.HasPrefix(line, "```"):
			language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			inCodeBlock = true
		case inCodeBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	// Unclosed block
	if inCodeBlock && len(codeLines) > 0 {
		flush()
	}

	return strings.Join(result, "\n")
}

func renderCodeBlock(language, code string, maxWidth int) string {
	code = strings.TrimRight(code, "\n")
	highlighted := highlightCode(code, language)

	lineNum := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	lines := strings.Split(highlighted, "\n")
	for i, line := range lines {
		lines[i] = lineNum.Render(strconv.Itoa(i+1)) + line
	}

	width := maxWidth - 4
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(width).
		Render(strings.Join(lines, "\n"))
}

// highlightCode applies chroma highlighting, returning code unchanged when
// no lexer or formatter can handle it.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/ui/styles"
	"github.com/epistemic-technology/termchat/internal/util"
)

// View renders the chat window.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	footer := m.renderFooter()

	available := m.height - lipgloss.Height(header) - lipgloss.Height(input) - lipgloss.Height(footer)
	if available < 1 {
		available = 1
	}
	transcript := m.viewport.View()
	if lipgloss.Height(transcript) != available {
		transcript = lipgloss.NewStyle().
			Height(available).
			MaxHeight(available).
			Width(m.width).
			Render(transcript)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, transcript, input, footer)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("termchat")
	info := ""
	if m.engine != nil {
		info = m.theme.ShortcutDesc.Render(" | session " + util.TruncateWidth(m.engine.SessionID(), 24))
	}
	return m.theme.Header.
		Width(m.width).
		Render(title + info)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every message, oldest first.
func (m Model) renderTranscript(history []model.Message) string {
	parts := make([]string, 0, len(history))
	for _, msg := range history {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg model.Message) string {
	if msg.Role == model.RoleUser {
		prompt := m.theme.InputPrompt.Render(styles.StatusIndicators.Prompt)
		return prompt + m.theme.UserMessage.Render(msg.Content)
	}

	body := m.renderer.Render(msg.Content)
	if !m.renderer.Markdown() {
		body = m.theme.BotMessage.Render(body)
	}
	if msg.HasSources() {
		body += "\n" + m.renderSources(msg.Sources)
	}
	return body
}

// renderSources renders the "Sources:" list under a bot message.
func (m Model) renderSources(cited []model.Source) string {
	titleWidth := m.contentWidth() - 4

	var sb strings.Builder
	sb.WriteString(m.theme.SourcesHeading.Render("Sources:"))
	for _, src := range cited {
		sb.WriteString("\n")
		sb.WriteString(m.theme.SourceMarker.Render(src.Marker()))
		sb.WriteString(" ")
		sb.WriteString(m.theme.SourceTitle.Render(util.TruncateWidth(util.SingleLine(src.DisplayTitle()), titleWidth)))
		if url := m.engine.SourceURL(src); url != "" {
			sb.WriteString("\n    ")
			sb.WriteString(m.theme.SourceURL.Render(url))
		}
	}
	return sb.String()
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInput() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(strings.Repeat("─", maxInt(m.width, 1)))

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " " + m.theme.ThinkingText.Render("waiting for a response")
	case m.completion.Active():
		status = m.renderCompletions()
	case m.lastErr != nil:
		status = m.theme.ErrorText.Render(util.TruncateWidth(m.lastErr.Error(), maxInt(m.width-2, 1)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, separator, m.input.View(), status)
}

func (m Model) renderCompletions() string {
	items := make([]string, 0, len(m.completion.Completions))
	for i, c := range m.completion.Completions {
		style := m.theme.CompletionItem
		if i == m.completion.Selected {
			style = m.theme.CompletionSelected
		}
		items = append(items, style.Render(c.Display))
	}
	line := strings.Join(items, " ")
	if sel := m.completion.Selected; sel >= 0 && sel < len(m.completion.Completions) {
		line += " " + m.theme.CompletionDesc.Render(m.completion.Completions[sel].Description)
	}
	return lipgloss.NewStyle().MaxWidth(maxInt(m.width, 1)).Render(line)
}

// =============================================================================
// FOOTER
// =============================================================================

func (m Model) renderFooter() string {
	parts := make([]string, 0, 4)
	for _, b := range m.keys.FooterBindings() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.Footer.
		Width(m.width).
		Render(strings.Join(parts, "  "))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/epistemic-technology/termchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("session: %s\n", escapeYAML(t.SessionID)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.History)))
	sb.WriteString(fmt.Sprintf("sources: %d\n", len(t.Sources)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", t.ExportedAt.Format(time.RFC3339)))
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# Session %s\n\n", escapeMarkdown(t.SessionID)))

	if len(t.History) == 0 {
		sb.WriteString("*No messages.*\n")
	}
	for i, msg := range t.History {
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				msg.Role.DisplayName(), msg.Timestamp.Format("2006-01-02 15:04:05")))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Role.DisplayName()))
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if msg.HasSources() {
			sb.WriteString(e.formatSources(msg.Sources))
			sb.WriteString("\n")
		}

		if i < len(t.History)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if len(t.Sources) > 0 {
		sb.WriteString("\n## Source Registry\n\n")
		sb.WriteString(e.formatSources(t.Sources))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// formatSources renders one list item per source, keyed by its slot.
func (e *MarkdownExporter) formatSources(list []model.Source) string {
	var sb strings.Builder
	for _, src := range list {
		title := escapeMarkdown(src.Title)
		if e.options.SourceURL != nil {
			if u := e.options.SourceURL(src); u != "" {
				title = fmt.Sprintf("[%s](%s)", title, u)
			}
		}
		if src.HasSlot() {
			sb.WriteString(fmt.Sprintf("- `:%d` %s", src.Slot, title))
		} else {
			sb.WriteString(fmt.Sprintf("- %s", title))
		}
		if src.Author != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", escapeMarkdown(src.Author)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that break headings and link text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for termchat.
//
// Sends one line through the session engine, so the exchange is saved to the
// session like any other, and prints the answer.
//
// Examples:
//   termchat ask "What is Epistemic Technology?"
//   termchat ask --json "What do you write about?"
//   termchat ask :sources
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/session"
)

// AskResult is the --json output of ask.
type AskResult struct {
	Query    string      `json:"query"`
	Outcome  string      `json:"outcome"`
	Messages []AskAnswer `json:"messages"`
}

// AskAnswer is one bot message produced by the query.
type AskAnswer struct {
	Content string      `json:"content"`
	Sources []AskSource `json:"sources,omitempty"`
}

// AskSource is a cited source with its slot and page URL.
type AskSource struct {
	Slot  int    `json:"slot"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (app *App) newAskCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question",
		Long: `Ask a single question and print the answer.

Command lines such as ":sources" or ":about" work as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := app.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()
			return Ask(cmd, rt.Engine, strings.Join(args, " "), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the answer as JSON")
	return cmd
}

// Ask submits query and prints the bot messages it produced. A failed
// backend round-trip prints the apology and returns ErrRequestFailed.
func Ask(cmd *cobra.Command, engine *session.Engine, query string, jsonOut bool) error {
	out := cmd.OutOrStdout()

	before := len(engine.History())
	outcome, err := engine.Submit(cmd.Context(), query)
	if err != nil {
		return err
	}
	if outcome == session.OutcomeIgnored {
		return &UsageError{Message: "empty question"}
	}

	history := engine.History()
	var answers []model.Message
	if len(history) > before {
		for _, msg := range history[before:] {
			if msg.Role == model.RoleBot {
				answers = append(answers, msg)
			}
		}
	}

	if jsonOut {
		if err := writeAskJSON(out, engine, query, outcome, answers); err != nil {
			return err
		}
	} else {
		printer := &transcriptPrinter{out: out, linker: engine.Linker()}
		for _, msg := range answers {
			printer.Print(msg)
		}
	}

	if outcome == session.OutcomeFailed {
		return ErrRequestFailed
	}
	return nil
}

func writeAskJSON(out io.Writer, engine *session.Engine, query string, outcome session.Outcome, answers []model.Message) error {
	result := AskResult{
		Query:    query,
		Outcome:  outcome.String(),
		Messages: make([]AskAnswer, 0, len(answers)),
	}
	for _, msg := range answers {
		a := AskAnswer{Content: msg.Content}
		for _, src := range msg.Sources {
			a.Sources = append(a.Sources, AskSource{
				Slot:  src.Slot,
				Title: src.DisplayTitle(),
				URL:   engine.SourceURL(src),
			})
		}
		result.Messages = append(result.Messages, a)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	return nil
}

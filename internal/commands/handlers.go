// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/epistemic-technology/termchat/internal/model"
	"github.com/epistemic-technology/termchat/internal/sources"
)

// AboutText is the body of the :about message.
const AboutText = `About Epistemic Technology

Epistemic Technology is a field that focuses on the development of tools and systems that help us understand, create, and share knowledge more effectively.

Our mission is to build technologies that enhance human cognition and improve our ability to make sense of complex information landscapes.`

// AboutTitle is the title of the synthetic source cited by :about.
const AboutTitle = "About Epistemic Technology"

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleHelp appends the command list.
func HandleHelp(ctx *Context) {
	ctx.Session.AppendBotMessage(GenerateHelpText(ctx.Registry), nil)
}

// HandleAbout appends the about text and cites the about page.
func HandleAbout(ctx *Context) {
	stored := ctx.Session.Sources().Add(AboutSource(ctx.Linker))
	ctx.Session.AppendBotMessage(AboutText, []model.Source{stored})
}

// HandleContact requests navigation to the contact page.
func HandleContact(ctx *Context) {
	ctx.Navigate(ctx.contactURL())
}

// HandleClear empties the history. Cited sources stay registered.
func HandleClear(ctx *Context) {
	ctx.Session.ClearHistory()
}

// HandleReset erases the saved session.
func HandleReset(ctx *Context) {
	ctx.Session.ResetSession()
}

// HandleExit asks the front end to close.
func HandleExit(ctx *Context) {
	ctx.RequestExit()
}

// HandleSources appends one message per registered source.
// With nothing registered it appends nothing.
func HandleSources(ctx *Context) {
	for _, src := range ctx.Session.Sources().List() {
		ctx.Session.AppendBotMessage(FormatSourceLine(src, ctx.Linker), nil)
	}
}

// openSlotHandler returns the handler for ":N".
func openSlotHandler(slot int) func(ctx *Context) {
	return func(ctx *Context) {
		src, ok := ctx.Session.Sources().Resolve(slot - 1)
		if !ok {
			ctx.Session.AppendBotMessage(fmt.Sprintf("No source available at index %d.", slot), nil)
			return
		}
		ctx.Navigate(ctx.Linker.SourceURL(src))
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// AboutSource returns the synthetic source for the about page.
func AboutSource(linker *sources.Linker) model.Source {
	return model.Source{
		Title:    AboutTitle,
		FilePath: linker.ContentDir() + "about.md",
		Author:   "Epistemic Technology",
	}
}

// FormatSourceLine renders a source as ":N Title" followed by its URL.
func FormatSourceLine(src model.Source, linker *sources.Linker) string {
	return fmt.Sprintf("%s %s\n%s", src.Marker(), src.DisplayTitle(), linker.SourceURL(src))
}

// GenerateHelpText lists the visible commands of r, then the slot commands.
func GenerateHelpText(r *Registry) string {
	if r == nil {
		r = NewRegistry()
	}

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range r.Visible() {
		fmt.Fprintf(&sb, "  %s - %s\n", cmd.Display(), cmd.Description)
	}
	fmt.Fprintf(&sb, "  %s1 .. %s%d - Open a cited source", Prefix, Prefix, sources.Capacity)
	return sb.String()
}

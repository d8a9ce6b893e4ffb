// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the terminal chat window for termchat.

The Model is a Bubble Tea model over a session.Engine. It owns no chat
state of its own: every render reads the engine's history, so the user
line shows up as soon as the engine records it, before the backend answers.

# Layout

	termchat | session default          header
	Hello Professor ...                 transcript (viewport)
	> what is this?
	...answer...
	Sources:
	:1 Some Essay
	    https://epistemic.technology/writing/some-essay/
	────────────────────────────────────
	> _                                  input
	█ waiting for a response            spinner / completions / error
	F1 :help  F2 :about  F3 :contact  F4 :exit

# Submission

Enter hands the line to Engine.Submit inside a tea.Cmd. The result comes
back as a SubmitResultMsg. When :exit runs, the engine fires the ExitSignal
and the model returns tea.Quit.

# Rendering

Bot messages go through glamour when markdown is enabled. Otherwise the text
is shown as written with fenced code blocks highlighted by chroma.
*/
package chat

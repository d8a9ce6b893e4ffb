// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"github.com/epistemic-technology/termchat/internal/model"
)

// ChatRequest is the body POSTed to the chat endpoint.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the body returned by the chat endpoint.
// Fields the client does not use (such as references) are ignored.
type ChatResponse struct {
	Response string         `json:"response"`
	Sources  []model.Source `json:"sources"`
}

// HasSources reports whether the answer cites any document.
func (r *ChatResponse) HasSources() bool {
	return r != nil && len(r.Sources) > 0
}

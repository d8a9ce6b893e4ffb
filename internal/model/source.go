// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strconv"

// Source is a document cited by the chatbot backend.
//
// The capitalised JSON keys are the backend's wire names. Slot is assigned
// locally by the source registry and is zero until the source is stored.
type Source struct {
	Title           string `json:"Title"`
	FilePath        string `json:"FilePath"`
	Author          string `json:"Author"`
	ID              int    `json:"ID"`
	Content         string `json:"Content"`
	PublicationDate string `json:"PublicationDate"`
	Slot            int    `json:"slot,omitempty"`
}

// HasSlot reports whether the registry has assigned a slot.
func (s Source) HasSlot() bool {
	return s.Slot > 0
}

// Marker returns the citation marker used in the transcript (":3").
func (s Source) Marker() string {
	if !s.HasSlot() {
		return ""
	}
	return ":" + strconv.Itoa(s.Slot)
}

// DisplayTitle returns the title, falling back to the file path.
func (s Source) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.FilePath
}

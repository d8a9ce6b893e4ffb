// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and cited sources.
//
// # Key Types
//
//   - Message: Single transcript entry with role, content and cited sources
//   - Role: Message role enumeration (user, bot)
//   - Source: A document cited by the chatbot backend
//
// # Usage
//
//	msg := model.NewUserMessage(":help")
//	reply := model.NewBotMessage("Hi", cited)
//
// JSON field names match the persisted session records and the backend wire
// format, so values round-trip through both without translation.
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for termchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Chat endpoint, timeout and rate limit
//   - SiteConfig: Site origin and content directory for source links
//   - StorageConfig: Session persistence backend
//   - Watcher: Reloads the config file when it changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHAT_API_URL, CHAT_CONTENT_DIR, TERMCHAT_*)
//   - .env in the working directory, then ~/.termchat/.env
//   - ~/.termchat/config.toml
//   - ~/.termchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    Endpoint: cfg.Backend.Endpoint,
//	    Timeout:  cfg.Backend.Timeout(),
//	})
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/epistemic-technology/termchat/internal/backend"
	"github.com/epistemic-technology/termchat/internal/browser"
	"github.com/epistemic-technology/termchat/internal/config"
	"github.com/epistemic-technology/termchat/internal/logger"
	"github.com/epistemic-technology/termchat/internal/session"
	"github.com/epistemic-technology/termchat/internal/sources"
	"github.com/epistemic-technology/termchat/internal/storage"
	"github.com/epistemic-technology/termchat/internal/ui/chat"
)

// Runtime is a fully wired chat session: config, persistence, transport
// and engine.
type Runtime struct {
	Config *config.Config
	Store  *storage.Store
	Client *backend.Client
	Engine *session.Engine
	Exit   *chat.ExitSignal

	watcher *config.Watcher
}

// NewRuntime wires a session from cfg. A storage backend that cannot be
// opened is logged and the session runs in memory only.
func NewRuntime(cfg *config.Config, nav browser.Navigator) (*Runtime, error) {
	kind, err := storage.ParseKind(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	be, err := storage.Open(kind, cfg.Storage.Path)
	if err != nil {
		logger.Warn("session storage unavailable, continuing without persistence",
			"backend", kind, "err", err)
	}
	store := storage.NewStore(be)

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		Endpoint:          cfg.Backend.Endpoint,
		Timeout:           cfg.Backend.Timeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
	})

	exit := chat.NewExitSignal()
	engine := session.New(session.Options{
		SessionID:   cfg.Session.ID,
		Transport:   client,
		Store:       store,
		Linker:      sources.NewLinker(cfg.Site.Origin, cfg.Site.ContentDir),
		Navigator:   nav,
		OnExit:      exit.Fire,
		ContactPath: cfg.Site.ContactPath,
	})

	logger.Debug("runtime ready", "session", engine.SessionID(),
		"endpoint", client.Endpoint(), "storage", kind, "persistent", store.Available())

	return &Runtime{
		Config: cfg,
		Store:  store,
		Client: client,
		Engine: engine,
		Exit:   exit,
	}, nil
}

// WatchConfig reloads path on change and pushes a new backend endpoint into
// the running engine. Missing files are not watched.
func (r *Runtime) WatchConfig(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	w, err := config.Watch(path, config.DefaultWatchDebounce, r.applyConfig)
	if err != nil {
		logger.Warn("config watch unavailable", "path", path, "err", err)
		return
	}
	r.watcher = w
}

// applyConfig applies the hot-reloadable parts of a reloaded config.
func (r *Runtime) applyConfig(cfg *config.Config) {
	if cfg.Backend.Endpoint == r.Client.Endpoint() {
		return
	}
	r.Engine.SetEndpoint(cfg.Backend.Endpoint)
}

// Close stops the watcher and releases the storage backend.
func (r *Runtime) Close() error {
	if r.watcher != nil {
		r.watcher.Close()
	}
	return r.Store.Close()
}

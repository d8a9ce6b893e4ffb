// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser opens page URLs outside the terminal.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
)

// Navigator opens a URL.
type Navigator interface {
	Open(url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string) error

// Open implements Navigator.
func (f NavigatorFunc) Open(url string) error {
	return f(url)
}

// =============================================================================
// SYSTEM BROWSER
// =============================================================================

// System opens URLs with the platform's default handler.
type System struct {
	// GOOS selects the opener; empty means runtime.GOOS
	GOOS string
}

// NewSystem returns a navigator for the current platform.
func NewSystem() *System {
	return &System{}
}

// Open starts the platform opener for rawURL without waiting for it.
// Only absolute http and https URLs are opened.
func (s *System) Open(rawURL string) error {
	if err := ValidateURL(rawURL); err != nil {
		return err
	}
	cmd, err := s.Command(rawURL)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", rawURL, err)
	}
	// Reap the opener in the background
	go cmd.Wait()
	return nil
}

// Command builds the opener command for rawURL.
func (s *System) Command(rawURL string) (*exec.Cmd, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "windows":
		// SECURITY: rundll32 avoids cmd.exe metacharacter parsing of the URL
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// ValidateURL rejects anything but absolute http(s) URLs.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open %q: missing host", rawURL)
	}
	return nil
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder remembers opened URLs instead of opening them.
// It is used in tests and when no display is available.
type Recorder struct {
	mu     sync.Mutex
	opened []string

	// Err, when set, is returned by Open after recording
	Err error
}

// Open implements Navigator.
func (r *Recorder) Open(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, url)
	return r.Err
}

// Opened returns the recorded URLs in order.
func (r *Recorder) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}

// Last returns the most recent URL, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.opened) == 0 {
		return ""
	}
	return r.opened[len(r.opened)-1]
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides structured logging for termchat.
//
// A package-level Logger writes to stderr by default. Front ends that own
// the terminal (the TUI) redirect it to a file with Configure.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// EnvLevel names the environment variable consulted when no level flag is given.
const EnvLevel = "TERMCHAT_LOG_LEVEL"

var (
	mu sync.RWMutex

	// Logger is the global logger instance.
	Logger = newLogger(os.Stderr, log.InfoLevel)

	closer io.Closer
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          "termchat",
	})
	l.SetLevel(level)
	return l
}

// Configure sets the level and destination of the global logger.
// Level precedence: argument, then TERMCHAT_LOG_LEVEL, then info.
// An empty file keeps logging on stderr.
func Configure(level string, file string) error {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}

	var out io.Writer = os.Stderr
	var c io.Closer
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		out, c = f, f
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
	}
	Logger = newLogger(out, ParseLevel(level))
	closer = c
	return nil
}

// SetOutput replaces the global logger's destination. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	Logger = newLogger(w, Logger.GetLevel())
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	Logger = newLogger(os.Stderr, Logger.GetLevel())
	return err
}

// ParseLevel converts a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return current().With(keyvals...)
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return Logger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	current().Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	current().Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	current().Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	current().Error(msg, keyvals...)
}

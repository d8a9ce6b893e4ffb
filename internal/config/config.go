// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for termchat.
//
// Configuration file locations (in order of precedence):
//   - ~/.termchat/config.toml
//   - ~/.termchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/epistemic-technology/termchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termchat configuration.
type Config struct {
	// Backend is the chatbot service
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Site is where cited sources are published
	Site SiteConfig `toml:"site" json:"site"`

	// Storage configures session persistence
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Session selects the persisted session
	Session SessionConfig `toml:"session" json:"session"`

	// Log configures diagnostic logging
	Log LogConfig `toml:"log" json:"log"`

	// UI configures the terminal front ends
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig contains chat backend configuration.
type BackendConfig struct {
	// Endpoint is the full URL of the chat endpoint
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// TimeoutSecs bounds a single request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond limits outgoing requests (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// SiteConfig contains source-link configuration.
type SiteConfig struct {
	// Origin is the site URL source paths are resolved against
	Origin string `toml:"origin" json:"origin"`
	// ContentDir is the prefix stripped from source file paths
	ContentDir string `toml:"content_dir" json:"content_dir"`
	// ContactPath is opened by :contact, relative to Origin
	ContactPath string `toml:"contact_path" json:"contact_path"`
}

// StorageConfig contains session persistence configuration.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory"
	Backend string `toml:"backend" json:"backend"`
	// Path is the directory (file) or database file (sqlite); empty = default
	Path string `toml:"path" json:"path"`
}

// SessionConfig selects the session namespace.
type SessionConfig struct {
	// ID namespaces persisted records
	ID string `toml:"id" json:"id"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	// File receives log output when set; the TUI defaults it
	File string `toml:"file" json:"file"`
}

// UIConfig contains UI preferences.
type UIConfig struct {
	// Markdown renders bot messages as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// WordWrap is the render width (0 = terminal width)
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Endpoint:    "http://localhost:8181/chat",
			TimeoutSecs: 60,
		},
		Site: SiteConfig{
			Origin:      "https://epistemic.technology",
			ContactPath: "contact/",
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Session: SessionConfig{
			ID: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Markdown: true,
			Theme:    "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the termchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".termchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogFile returns the log file used by the TUI.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termchat.log")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// .env files and environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	loaded := false
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				loaded = true
			}
		}
	}

	if !loaded {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				if err := LoadJSON(cfg, jsonPath); err != nil {
					loadErr = fmt.Errorf("failed to load JSON config: %w", err)
					cfg = Default()
				}
			}
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// finish applies .env and environment overrides, defaults and validation.
func finish(cfg *Config) error {
	env, err := LoadDotEnv(DotEnvPaths()...)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(env.Lookup)
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.Endpoint == "" {
		cfg.Backend.Endpoint = defaults.Backend.Endpoint
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Site.Origin == "" {
		cfg.Site.Origin = defaults.Site.Origin
	}
	if cfg.Site.ContactPath == "" {
		cfg.Site.ContactPath = defaults.Site.ContactPath
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Session.ID == "" {
		cfg.Session.ID = defaults.Session.ID
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# termchat configuration file\n")
	sb.WriteString("# Generated by termchat - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.Backend.Endpoint); err != nil {
		errs = append(errs, ValidationError{Field: "backend.endpoint", Message: err.Error()})
	}
	if c.Backend.TimeoutSecs < 0 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 0 and 3600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.requests_per_second",
			Message: "must not be negative",
		})
	}

	if err := validateHTTPURL(c.Site.Origin); err != nil {
		errs = append(errs, ValidationError{Field: "site.origin", Message: err.Error()})
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite", "memory":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}

	if strings.ContainsAny(c.Session.ID, `/\`) || strings.TrimSpace(c.Session.ID) != c.Session.ID {
		errs = append(errs, ValidationError{
			Field:   "session.id",
			Message: "must not contain path separators or surrounding spaces",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must not be negative"})
	}
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got '%s'", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host, got '%s'", raw)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies overrides from the process environment only.
func (c *Config) ApplyEnvOverrides() {
	c.ApplyEnv(os.Getenv)
}

// ApplyEnv applies environment overrides read through lookup.
//
// Supported variables:
//   - CHAT_API_URL: overrides backend.endpoint
//   - VITE_API_URL: overrides backend.endpoint when CHAT_API_URL is unset
//   - CHAT_CONTENT_DIR: overrides site.content_dir
//   - CHAT_SITE_ORIGIN: overrides site.origin
//   - TERMCHAT_SESSION: overrides session.id
//   - TERMCHAT_STORAGE: overrides storage.backend
//   - TERMCHAT_STORAGE_PATH: overrides storage.path
//   - TERMCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnv(lookup func(string) string) {
	if endpoint := lookup("CHAT_API_URL"); endpoint != "" {
		c.Backend.Endpoint = endpoint
	} else if endpoint := lookup("VITE_API_URL"); endpoint != "" {
		c.Backend.Endpoint = endpoint
	}

	if dir := lookup("CHAT_CONTENT_DIR"); dir != "" {
		c.Site.ContentDir = dir
	}
	if origin := lookup("CHAT_SITE_ORIGIN"); origin != "" {
		c.Site.Origin = origin
	}
	if id := lookup("TERMCHAT_SESSION"); id != "" {
		c.Session.ID = id
	}
	if backend := lookup("TERMCHAT_STORAGE"); backend != "" {
		c.Storage.Backend = backend
	}
	if path := lookup("TERMCHAT_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if level := lookup("TERMCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.endpoint").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookupField(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "backend.endpoint").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookupField(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookupField walks a dotted key down the struct tree.
func (c *Config) lookupField(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		sectionName := strings.Split(section.Tag.Get("toml"), ",")[0]
		for j := 0; j < section.Type.NumField(); j++ {
			name := strings.Split(section.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, sectionName+"."+name)
		}
	}
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return sb.String()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Env is a set of variables read from .env files, layered under the
// process environment.
type Env map[string]string

// DotEnvPaths returns the .env files consulted by Load, highest precedence
// first: the working directory, then the config directory.
func DotEnvPaths() []string {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return paths
}

// LoadDotEnv parses the given .env files. Missing files are skipped; when a
// variable appears in several files the earliest file wins.
// The process environment is not modified.
func LoadDotEnv(paths ...string) (Env, error) {
	env := Env{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue // Missing .env file is not an error
			}
			return nil, fmt.Errorf("failed to read .env file %s: %w", path, err)
		}

		values, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse .env file %s: %w", path, err)
		}
		for key, value := range values {
			if _, seen := env[key]; !seen {
				env[key] = value
			}
		}
	}
	return env, nil
}

// Lookup returns the process environment value for key, falling back to
// the .env value.
func (e Env) Lookup(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return e[key]
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Maintenance subcommands for termchat.
//
// Examples:
//   termchat reset --session demo
//   termchat export --format markdown --out ./transcripts
//   termchat config
//   termchat config get backend.endpoint
//   termchat config set storage.backend sqlite
//   termchat version
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistemic-technology/termchat/internal/config"
	"github.com/epistemic-technology/termchat/internal/export"
	"github.com/epistemic-technology/termchat/internal/sources"
	"github.com/epistemic-technology/termchat/internal/storage"
	"github.com/epistemic-technology/termchat/internal/util"
)

// =============================================================================
// RESET
// =============================================================================

func (app *App) newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Erase a session's saved history and sources",
		Long: `Erase the saved history, sources and source cursor of a session.

The next session with the same id starts from the greeting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			if err := app.setupLogging(cfg, false); err != nil {
				return err
			}
			return ResetSession(cmd, cfg)
		},
	}
}

// ResetSession deletes the persisted records of cfg's session.
func ResetSession(cmd *cobra.Command, cfg *config.Config) error {
	kind, err := storage.ParseKind(cfg.Storage.Backend)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}
	be, err := storage.Open(kind, cfg.Storage.Path)
	if err != nil {
		return NewCommandError("reset", "open", "session storage unavailable", err)
	}
	store := storage.NewStore(be)
	defer store.Close()

	store.Reset(cfg.Session.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Session %q reset.\n", cfg.Session.ID)
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

func (app *App) newExportCommand() *cobra.Command {
	var (
		format     string
		outDir     string
		timestamps bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a saved session to a Markdown or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			if err := app.setupLogging(cfg, false); err != nil {
				return err
			}
			opts := export.DefaultOptions()
			opts.OutputDir = outDir
			opts.IncludeTimestamps = timestamps
			return ExportSession(cmd, cfg, format, opts)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Export format ("+strings.Join(export.Formats(), "|")+")")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&timestamps, "timestamps", true, "Include per-message timestamps")
	return cmd
}

// ExportSession loads cfg's session and writes it in format.
func ExportSession(cmd *cobra.Command, cfg *config.Config, format string, opts *export.Options) error {
	if opts.SourceURL == nil {
		opts.SourceURL = sources.NewLinker(cfg.Site.Origin, cfg.Site.ContentDir).SourceURL
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}

	kind, err := storage.ParseKind(cfg.Storage.Backend)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}
	be, err := storage.Open(kind, cfg.Storage.Path)
	if err != nil {
		return NewCommandError("export", "open", "session storage unavailable", err)
	}
	store := storage.NewStore(be)
	defer store.Close()

	transcript := export.FromState(cfg.Session.ID, store.Load(cfg.Session.ID))
	path, err := export.ExportToFile(transcript, exporter, opts)
	if err != nil {
		return NewCommandError("export", "write", "could not write transcript", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(transcript.History), path)
	return nil
}

// =============================================================================
// CONFIG
// =============================================================================

func (app *App) newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show the effective configuration, after config file, .env files,
environment variables and flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return &UsageError{Message: err.Error()}
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return err
			}
			if err := SetConfigValue(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List configuration keys with their effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatKeyTable(cfg))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return configCmd
}

// FormatKeyTable lists every config key beside its value, one per line,
// with the values aligned.
func FormatKeyTable(cfg *config.Config) string {
	keys := config.Keys()
	width := 0
	for _, key := range keys {
		width = max(width, util.StringWidth(key))
	}

	var sb strings.Builder
	for _, key := range keys {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "%s  %v\n", util.PadRight(key, width), value)
	}
	return sb.String()
}

func (app *App) configFilePath() (string, error) {
	if app.Flags.ConfigPath != "" {
		return app.Flags.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// SetConfigValue changes key in the file at path. Only the file's own
// values are written back; environment overrides are not persisted.
func SetConfigValue(path, key, value string) error {
	cfg := config.Default()
	isJSON := strings.HasSuffix(path, ".json")

	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if isJSON {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return NewCommandError("config", "set", "cannot read "+path, err)
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if isJSON {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// =============================================================================
// VERSION
// =============================================================================

func (app *App) newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			detailed, _ := cmd.Flags().GetBool("detailed")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "termchat %s\n", Version)
			if detailed {
				fmt.Fprintf(out, "  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
					GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	return versionCmd
}

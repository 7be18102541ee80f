// Package main provides the speccanvas binary entry point.
// Speccanvas is a visual spec editor core: it holds a spec graph, scores its
// quality with a deterministic heuristic or a configured model, generates
// field content, and exports the graph for implementation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/speccanvas/speccanvas/llm/providers"

	"github.com/speccanvas/speccanvas/config"
)

const (
	Version = "0.1.0"
	appName = "speccanvas"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Visual spec editor core",
		Long: `Speccanvas holds a graph of spec nodes (triggers, processes,
integrations, outputs), scores its quality, and exports it as JSON,
Markdown, or an implementation prompt.

Scoring runs a deterministic heuristic by default. When a model API key
is configured the score is model-assisted, with the heuristic as an
automatic fallback.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(&configPath),
		scoreCmd(&configPath),
		exportCmd(&configPath),
		generateCmd(&configPath),
		watchCmd(&configPath),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	}
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(slog.Default()).Load()
}

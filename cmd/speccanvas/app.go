package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/speccanvas/speccanvas/analyze"
	"github.com/speccanvas/speccanvas/autogen"
	"github.com/speccanvas/speccanvas/config"
	"github.com/speccanvas/speccanvas/events"
	"github.com/speccanvas/speccanvas/export"
	"github.com/speccanvas/speccanvas/llm"
	"github.com/speccanvas/speccanvas/model"
	"github.com/speccanvas/speccanvas/spec"
)

// app bundles the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *model.Registry
	client    *llm.Client
	scorer    *analyze.RemoteScorer
	generator *autogen.Generator
	publisher *events.Publisher
}

// newApp builds the shared stack from configuration. The model client is
// always constructed; whether it is actually used depends on which provider
// credentials are present in the environment.
func newApp(cfg *config.Config) (*app, error) {
	logger := slog.Default()

	registry := model.NewDefaultRegistry()
	if cfg.Models.RegistryPath != "" {
		loaded, err := model.LoadFromFile(cfg.Models.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("loading model registry: %w", err)
		}
		registry = loaded
		logger.Info("loaded model registry", "path", cfg.Models.RegistryPath)
	}

	client := llm.NewClient(registry, llm.WithLogger(logger))
	scorer := analyze.NewRemoteScorer(client, logger)

	publisher, err := events.Connect(cfg.NATS.URL, logger)
	if err != nil {
		// Events are best-effort; the editor works without them.
		logger.Warn("event publishing disabled", "error", err)
		publisher = events.NewPublisher(nil, logger)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		client:    client,
		scorer:    scorer,
		generator: autogen.NewGenerator(client, logger),
		publisher: publisher,
	}, nil
}

func (a *app) close() {
	a.publisher.Close()
}

// loadGraph reads a snapshot file, or returns an empty graph for "".
func loadGraph(path string) (*spec.Graph, error) {
	if path == "" {
		return &spec.Graph{Nodes: []*spec.Node{}, Edges: []spec.Edge{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	g, _, err := export.ImportJSON(data)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return g, nil
}

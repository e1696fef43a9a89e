package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/export"
	"github.com/vk/kubelower/internal/hclloader"
	"github.com/vk/kubelower/internal/metrics"
	"github.com/vk/kubelower/internal/modifier"
	"github.com/vk/kubelower/internal/topology"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loader  *hclloader.Loader
	metrics *metrics.Metrics
}

// Result is what one run produced.
type Result struct {
	Files     []string
	Topology  topology.Store
	Manifests []export.Manifest
}

// NewApp is the constructor for the main application. Results are written
// to outW unless an output file is configured; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loader:  hclloader.NewLoader(),
		metrics: metrics.New(),
	}
}

// Metrics returns the counters of the app's runs. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Transform loads the configured paths and rewrites the topology in memory.
func (a *App) Transform(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Transform method started.", "paths", a.config.Paths)

	loaded, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load topology: %w", err)
	}
	a.logger.Info("Topology loaded.", "files", len(loaded.Files), "nodes", len(loaded.Topology.Nodes(ctx)))

	rw := modifier.New(loaded.Registry,
		modifier.WithTypes(a.config.Types),
		modifier.WithTag(a.config.Tag),
		modifier.WithMetrics(a.metrics),
	)
	if err := rw.Process(ctx, loaded.Topology, loaded.Inputs); err != nil {
		return nil, fmt.Errorf("failed to rewrite topology: %w", err)
	}

	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			return nil, fmt.Errorf("failed to write metrics: %w", err)
		}
		a.logger.Debug("Metrics written.", "path", a.config.MetricsFile)
	}

	return &Result{
		Files:     loaded.Files,
		Topology:  loaded.Topology,
		Manifests: export.Manifests(ctx, loaded.Topology, a.config.Types.Resource, modifier.PropResourceYAML),
	}, nil
}

// Render transforms the topology and writes its manifests.
func (a *App) Render(ctx context.Context) (*Result, error) {
	res, err := a.Transform(ctx)
	if err != nil {
		return nil, err
	}
	err = a.withOutput(func(w io.Writer) error {
		return export.WriteManifests(w, res.Manifests)
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("Manifests rendered.", "count", len(res.Manifests), "output", a.config.Output)
	return res, nil
}

// Inspect transforms the topology and dumps the rewritten graph.
func (a *App) Inspect(ctx context.Context) (*Result, error) {
	res, err := a.Transform(ctx)
	if err != nil {
		return nil, err
	}
	err = a.withOutput(func(w io.Writer) error {
		return export.WriteTopology(ctx, w, res.Topology)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withOutput runs fn against the configured output destination.
func (a *App) withOutput(fn func(io.Writer) error) error {
	if a.config.Output == StdoutOutput {
		return fn(a.outW)
	}

	f, err := os.Create(a.config.Output)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

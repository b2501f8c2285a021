package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
	"github.com/goliatone/go-dashboard-filters/pkg/config"
	"github.com/goliatone/go-dashboard-filters/pkg/manifests"
)

type app struct {
	cfg          config.Config
	logger       *zap.Logger
	registry     *dashboard.Registry
	orchestrator *dashboard.Orchestrator
	coordinator  *dashboard.Coordinator
}

func newApp(g *Globals, overrides map[string]any) (*app, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	overrides["base_url"] = g.BaseURL
	overrides["manifests_dir"] = g.ManifestsDir
	overrides["log_level"] = g.LogLevel

	cfg, err := config.Load(g.Config, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	registry := dashboard.NewRegistry()
	for _, path := range cfg.KindManifests {
		doc, err := registry.LoadManifestFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("kind manifest loaded", zap.String("path", path), zap.Int("kinds", len(doc.Kinds)))
	}

	telemetry := dashboard.NewLoggerTelemetry(logger.Named("telemetry"))
	coordinator := dashboard.NewCoordinator(dashboard.CoordinatorOptions{Telemetry: telemetry})
	orchestrator := dashboard.NewOrchestrator(dashboard.Options{
		Source:      source,
		Coordinator: coordinator,
		Kinds:       registry,
		Telemetry:   telemetry,
		AliasCache:  dashboard.NewAliasCache(cfg.AliasCacheTTL),
	})
	return &app{
		cfg:          cfg,
		logger:       logger,
		registry:     registry,
		orchestrator: orchestrator,
		coordinator:  coordinator,
	}, nil
}

func newSource(cfg config.Config) (dashboard.ManifestSource, error) {
	if cfg.ManifestsDir != "" {
		return manifests.NewFileSource(cfg.ManifestsDir), nil
	}
	return manifests.NewHTTPClient(manifests.HTTPConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("dashctl: log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("dashctl: init logger: %w", err)
	}
	return logger, nil
}

// load resolves the project (flag wins over config) and installs it.
func (a *app) load(ctx context.Context, project string) (dashboard.TabCollection, error) {
	if project == "" {
		project = a.cfg.Project
	}
	if project == "" {
		return dashboard.TabCollection{}, fmt.Errorf("dashctl: project is required (flag or config)")
	}
	col, err := a.orchestrator.Load(ctx, project)
	if err != nil {
		return dashboard.TabCollection{}, err
	}
	a.logger.Info("dashboard loaded",
		zap.String("project", col.Project),
		zap.Int("tabs", len(col.Tabs)),
		zap.String("layout", string(col.Layout)),
		zap.Bool("filter_panel", col.FilterPanelEnabled),
	)
	return col, nil
}

// applyView selects the tab and toggles each filter on it, returning the tab id.
func (a *app) applyView(ctx context.Context, tabID string, filters []string) (string, error) {
	if tabID != "" {
		if err := a.coordinator.SelectTab(ctx, tabID); err != nil {
			return "", err
		}
	}
	tabID = a.coordinator.ActiveTab()
	parsed, err := parseFilters(filters)
	if err != nil {
		return "", err
	}
	for _, f := range parsed {
		if !a.coordinator.Toggle(ctx, tabID, f.dimension, f.value) {
			a.logger.Warn("filter value is not an option of the tab",
				zap.String("tab_id", tabID),
				zap.String("dimension", f.dimension),
				zap.String("value", f.value),
			)
		}
	}
	return tabID, nil
}

func (a *app) close() {
	if a != nil && a.logger != nil {
		_ = a.logger.Sync()
	}
}

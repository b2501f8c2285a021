package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/gorouter"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/queries"
)

type serveCmd struct {
	Project    string        `arg:"" optional:"" help:"Project to load on startup (defaults to config project)."`
	Listen     string        `help:"Listen address (defaults to config listen)."`
	HTTPListen string        `name:"http-listen" help:"Also serve the API, SSE and WebSocket streams on this address with net/http."`
	Refresh    time.Duration `help:"Reload the project on this interval; 0 disables."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(g, map[string]any{"listen": cmd.Listen})
	if err != nil {
		return err
	}
	defer a.close()

	telemetry := dashboard.NewLoggerTelemetry(a.logger.Named("commands"))
	hook := dashboard.NewBroadcastHook()
	unsubscribeHook := a.coordinator.Subscribe(hook)
	defer unsubscribeHook()
	unsubscribeLog := a.coordinator.Subscribe(eventLogger(a.logger.Named("events")))
	defer unsubscribeLog()

	load := commands.NewLoadDashboardCommand(a.orchestrator, telemetry)
	controller := dashboard.NewController(a.coordinator)
	api := &httpapi.Handlers{
		Load:           load,
		SelectTab:      commands.NewSelectTabCommand(a.coordinator, telemetry),
		Toggle:         commands.NewToggleFilterCommand(a.coordinator, telemetry),
		ClearDimension: commands.NewClearDimensionCommand(a.coordinator, telemetry),
		ClearFilters:   commands.NewClearFiltersCommand(a.coordinator, telemetry),
		Tabs:           queries.NewTabsQuery(a.coordinator),
		Records:        queries.NewVisibleRecordsQuery(a.coordinator),
		Selection:      queries.NewSelectionQuery(a.coordinator),
		FilterOptions:  queries.NewFilterOptionsQuery(a.coordinator),
		Snapshot:       controller,
		Events:         hook,
	}

	project := cmd.Project
	if project == "" {
		project = a.cfg.Project
	}
	if project != "" {
		if err := load.Execute(ctx, commands.LoadDashboardInput{Project: project}); err != nil {
			return err
		}
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        api,
		Broadcast:  hook,
		BasePath:   a.cfg.BasePath,
	}); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.logger.Info("dashboard api listening",
			zap.String("listen", a.cfg.Listen),
			zap.String("base_path", a.cfg.BasePath),
		)
		return server.Serve(a.cfg.Listen)
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cmd.HTTPListen != "" {
		std := &http.Server{
			Addr:              cmd.HTTPListen,
			Handler:           api.Handler(a.cfg.BasePath),
			ReadHeaderTimeout: 10 * time.Second,
		}
		group.Go(func() error {
			a.logger.Info("dashboard net/http api listening", zap.String("listen", cmd.HTTPListen))
			if err := std.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return std.Shutdown(shutdownCtx)
		})
	}
	if cmd.Refresh > 0 && project != "" {
		group.Go(func() error {
			return refreshLoop(gctx, load, project, cmd.Refresh, a.logger)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// refreshLoop reloads the project until ctx ends. Failed reloads keep the
// installed collection and are only logged.
func refreshLoop(ctx context.Context, load *commands.LoadDashboardCommand, project string, every time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := load.Execute(ctx, commands.LoadDashboardInput{Project: project}); err != nil {
				logger.Warn("dashboard refresh failed", zap.String("project", project), zap.Error(err))
			}
		}
	}
}

func eventLogger(logger *zap.Logger) dashboard.ObserverFuncs {
	return dashboard.ObserverFuncs{
		OnTabChange: func(_ context.Context, event dashboard.TabChangeEvent) {
			logger.Info("tab changed",
				zap.String("event_id", event.ID),
				zap.String("old_tab_id", event.OldTabID),
				zap.String("new_tab_id", event.NewTabID),
			)
		},
		OnContextReport: func(_ context.Context, report dashboard.ContextReport) {
			logger.Debug("tab context reported",
				zap.String("tab_id", report.TabID),
				zap.Int("records", len(report.Records)),
				zap.Strings("dimensions", selectedDimensions(report.Selection)),
			)
		},
	}
}

func selectedDimensions(sel dashboard.FilterSelection) []string {
	out := make([]string, 0, len(sel))
	for dim := range sel {
		out = append(out, dim)
	}
	return out
}

package gorouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/queries"
)

// Config wires go-router with the dashboard controller, commands and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        *httpapi.Handlers
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Snapshot       string
	Load           string
	Tabs           string
	SelectTab      string
	Records        string
	Selection      string
	FilterOptions  string
	Toggle         string
	ClearDimension string
	ClearFilters   string
	WebSocket      string
}

// requestContext is the slice of router.Context the handlers rely on.
type requestContext interface {
	Context() context.Context
	Param(name string, defaultValue ...string) string
	Body() []byte
	JSON(code int, v any) error
}

type route struct {
	method string
	path   string
	handle func(requestContext) error
}

// Register mounts dashboard routes (JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}
	group := cfg.Router.Group(base)

	for _, rt := range routeTable(cfg.Controller, cfg.API, routes) {
		handle := rt.handle
		handler := router.WrapHandler(func(ctx router.Context) error {
			return handle(ctx)
		})
		switch rt.method {
		case http.MethodGet:
			group.Get(rt.path, handler)
		case http.MethodPost:
			group.Post(rt.path, handler)
		case http.MethodDelete:
			group.Delete(rt.path, handler)
		}
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func routeTable(controller *dashboard.Controller, api *httpapi.Handlers, routes RouteConfig) []route {
	table := []route{{
		method: http.MethodGet,
		path:   routes.Snapshot,
		handle: func(ctx requestContext) error {
			return respondSnapshot(ctx, controller, http.StatusOK)
		},
	}}
	if api == nil {
		return table
	}

	if api.Load != nil {
		table = append(table, route{http.MethodPost, routes.Load, func(ctx requestContext) error {
			project := ctx.Param("project")
			if project == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("project is required"))
			}
			if err := api.Load.Execute(ctx.Context(), commands.LoadDashboardInput{Project: project}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return respondSnapshot(ctx, controller, http.StatusOK)
		}})
	}

	if api.Tabs != nil {
		table = append(table, route{http.MethodGet, routes.Tabs, func(ctx requestContext) error {
			result, err := api.Tabs.Query(ctx.Context(), queries.TabsInput{})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, result)
		}})
	}

	if api.SelectTab != nil {
		table = append(table, route{http.MethodPost, routes.SelectTab, func(ctx requestContext) error {
			input := commands.SelectTabInput{TabID: ctx.Param("tab")}
			if err := api.SelectTab.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return respondSnapshot(ctx, controller, http.StatusOK)
		}})
	}

	if api.Records != nil {
		table = append(table, route{http.MethodGet, routes.Records, func(ctx requestContext) error {
			tabID := ctx.Param("tab")
			records, err := api.Records.Query(ctx.Context(), queries.TabInput{TabID: tabID})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"tab_id": tabID, "records": records})
		}})
	}

	if api.Selection != nil {
		table = append(table, route{http.MethodGet, routes.Selection, func(ctx requestContext) error {
			state, err := api.Selection.Query(ctx.Context(), queries.TabInput{TabID: ctx.Param("tab")})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, state)
		}})
	}

	if api.FilterOptions != nil {
		table = append(table, route{http.MethodGet, routes.FilterOptions, func(ctx requestContext) error {
			tabID := ctx.Param("tab")
			dims, err := api.FilterOptions.Query(ctx.Context(), queries.TabInput{TabID: tabID})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"tab_id": tabID, "dimensions": dims})
		}})
	}

	if api.Toggle != nil {
		table = append(table, route{http.MethodPost, routes.Toggle, func(ctx requestContext) error {
			var payload httpapi.TogglePayload
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.ToggleFilterInput{TabID: ctx.Param("tab"), Dimension: payload.Dimension, Value: payload.Value}
			if err := api.Toggle.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			return respondSelection(ctx, api, input.TabID)
		}})
	}

	if api.ClearDimension != nil {
		table = append(table, route{http.MethodDelete, routes.ClearDimension, func(ctx requestContext) error {
			input := commands.ClearDimensionInput{TabID: ctx.Param("tab"), Dimension: ctx.Param("dimension")}
			if err := api.ClearDimension.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			return respondSelection(ctx, api, input.TabID)
		}})
	}

	if api.ClearFilters != nil {
		table = append(table, route{http.MethodDelete, routes.ClearFilters, func(ctx requestContext) error {
			input := commands.ClearFiltersInput{TabID: ctx.Param("tab")}
			if err := api.ClearFilters.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			return respondSelection(ctx, api, input.TabID)
		}})
	}
	return table
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondSnapshot(ctx requestContext, controller *dashboard.Controller, status int) error {
	snap, err := controller.Snapshot(ctx.Context())
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(status, snap)
}

func respondSelection(ctx requestContext, api *httpapi.Handlers, tabID string) error {
	if api.Selection == nil {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
	state, err := api.Selection.Query(ctx.Context(), queries.TabInput{TabID: tabID})
	if errors.Is(err, dashboard.ErrUnknownTab) {
		return ctx.JSON(http.StatusAccepted, dashboard.TabState{TabID: tabID, Selection: dashboard.FilterSelection{}})
	}
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, state)
}

func respondError(ctx requestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Snapshot == "" {
		routes.Snapshot = "/dashboard"
	}
	if routes.Load == "" {
		routes.Load = "/dashboard/load/:project"
	}
	if routes.Tabs == "" {
		routes.Tabs = "/dashboard/tabs"
	}
	if routes.SelectTab == "" {
		routes.SelectTab = "/dashboard/tabs/:tab/select"
	}
	if routes.Records == "" {
		routes.Records = "/dashboard/tabs/:tab/records"
	}
	if routes.Selection == "" {
		routes.Selection = "/dashboard/tabs/:tab/selection"
	}
	if routes.FilterOptions == "" {
		routes.FilterOptions = "/dashboard/tabs/:tab/filters"
	}
	if routes.Toggle == "" {
		routes.Toggle = "/dashboard/tabs/:tab/filters/toggle"
	}
	if routes.ClearDimension == "" {
		routes.ClearDimension = "/dashboard/tabs/:tab/filters/:dimension"
	}
	if routes.ClearFilters == "" {
		routes.ClearFilters = "/dashboard/tabs/:tab/filters"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-filters/components/dashboard"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-filters/components/dashboard/queries"
)

// SnapshotProvider renders the full view state.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Load           gocommand.Commander[commands.LoadDashboardInput]
	SelectTab      gocommand.Commander[commands.SelectTabInput]
	Toggle         gocommand.Commander[commands.ToggleFilterInput]
	ClearDimension gocommand.Commander[commands.ClearDimensionInput]
	ClearFilters   gocommand.Commander[commands.ClearFiltersInput]

	Tabs          gocommand.Querier[queries.TabsInput, queries.TabsResult]
	Records       gocommand.Querier[queries.TabInput, []dashboard.Record]
	Selection     gocommand.Querier[queries.TabInput, dashboard.TabState]
	FilterOptions gocommand.Querier[queries.TabInput, []dashboard.FilterDimension]
	Snapshot      SnapshotProvider

	// Events streams coordinator events over SSE and WebSocket when set.
	Events *dashboard.BroadcastHook
}

// TogglePayload is the body of a toggle request.
type TogglePayload struct {
	Dimension string `json:"dimension"`
	Value     any    `json:"value"`
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrUnknownTab):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrDashboardLoad):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) HandleLoad(w http.ResponseWriter, r *http.Request, project string) {
	if err := h.Load.Execute(r.Context(), commands.LoadDashboardInput{Project: project}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.respondSnapshot(w, r, http.StatusOK)
}

func (h *Handlers) HandleSelectTab(w http.ResponseWriter, r *http.Request, tabID string) {
	if err := h.SelectTab.Execute(r.Context(), commands.SelectTabInput{TabID: tabID}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.respondSnapshot(w, r, http.StatusOK)
}

func (h *Handlers) HandleToggleFilter(w http.ResponseWriter, r *http.Request, tabID string) {
	var payload TogglePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.ToggleFilterInput{TabID: tabID, Dimension: payload.Dimension, Value: payload.Value}
	if input.Dimension == "" || input.Value == nil {
		http.Error(w, "dimension and value are required", http.StatusBadRequest)
		return
	}
	if err := h.Toggle.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.respondSelection(w, r, tabID)
}

func (h *Handlers) HandleClearDimension(w http.ResponseWriter, r *http.Request, tabID, dimension string) {
	input := commands.ClearDimensionInput{TabID: tabID, Dimension: dimension}
	if err := h.ClearDimension.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.respondSelection(w, r, tabID)
}

func (h *Handlers) HandleClearFilters(w http.ResponseWriter, r *http.Request, tabID string) {
	if err := h.ClearFilters.Execute(r.Context(), commands.ClearFiltersInput{TabID: tabID}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.respondSelection(w, r, tabID)
}

func (h *Handlers) HandleTabs(w http.ResponseWriter, r *http.Request) {
	result, err := h.Tabs.Query(r.Context(), queries.TabsInput{})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleVisibleRecords(w http.ResponseWriter, r *http.Request, tabID string) {
	records, err := h.Records.Query(r.Context(), queries.TabInput{TabID: tabID})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tab_id": tabID, "records": records})
}

func (h *Handlers) HandleSelection(w http.ResponseWriter, r *http.Request, tabID string) {
	state, err := h.Selection.Query(r.Context(), queries.TabInput{TabID: tabID})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request, tabID string) {
	dims, err := h.FilterOptions.Query(r.Context(), queries.TabInput{TabID: tabID})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tab_id": tabID, "dimensions": dims})
}

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	h.respondSnapshot(w, r, http.StatusOK)
}

func (h *Handlers) respondSelection(w http.ResponseWriter, r *http.Request, tabID string) {
	if h.Selection == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	state, err := h.Selection.Query(r.Context(), queries.TabInput{TabID: tabID})
	if errors.Is(err, dashboard.ErrUnknownTab) {
		// toggles may target tabs that are not installed yet
		writeJSON(w, http.StatusAccepted, dashboard.TabState{TabID: tabID, Selection: dashboard.FilterSelection{}})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) respondSnapshot(w http.ResponseWriter, r *http.Request, status int) {
	if h.Snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	snap, err := h.Snapshot.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, status, snap)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

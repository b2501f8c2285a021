package httpapi

import (
	"net/http"
	"strings"
)

// Handler mounts every configured endpoint on a net/http mux under basePath.
// Endpoints whose command or query is nil are left out.
func (h *Handlers) Handler(basePath string) http.Handler {
	base := strings.TrimRight(basePath, "/")
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+base+path, fn)
	}

	handle("GET /dashboard", h.HandleSnapshot)
	if h.Load != nil {
		handle("POST /dashboard/load/{project}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleLoad(w, r, r.PathValue("project"))
		})
	}
	if h.Tabs != nil {
		handle("GET /dashboard/tabs", h.HandleTabs)
	}
	if h.SelectTab != nil {
		handle("POST /dashboard/tabs/{tab}/select", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSelectTab(w, r, r.PathValue("tab"))
		})
	}
	if h.Records != nil {
		handle("GET /dashboard/tabs/{tab}/records", func(w http.ResponseWriter, r *http.Request) {
			h.HandleVisibleRecords(w, r, r.PathValue("tab"))
		})
	}
	if h.Selection != nil {
		handle("GET /dashboard/tabs/{tab}/selection", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSelection(w, r, r.PathValue("tab"))
		})
	}
	if h.FilterOptions != nil {
		handle("GET /dashboard/tabs/{tab}/filters", func(w http.ResponseWriter, r *http.Request) {
			h.HandleFilterOptions(w, r, r.PathValue("tab"))
		})
	}
	if h.Toggle != nil {
		handle("POST /dashboard/tabs/{tab}/filters/toggle", func(w http.ResponseWriter, r *http.Request) {
			h.HandleToggleFilter(w, r, r.PathValue("tab"))
		})
	}
	if h.ClearDimension != nil {
		handle("DELETE /dashboard/tabs/{tab}/filters/{dimension}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleClearDimension(w, r, r.PathValue("tab"), r.PathValue("dimension"))
		})
	}
	if h.ClearFilters != nil {
		handle("DELETE /dashboard/tabs/{tab}/filters", func(w http.ResponseWriter, r *http.Request) {
			h.HandleClearFilters(w, r, r.PathValue("tab"))
		})
	}
	if h.Events != nil {
		handle("GET /dashboard/events", h.Events.ServeSSE)
		handle("GET /dashboard/ws", h.Events.ServeWebSocket)
	}
	return mux
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	data       DataManifest
	dataErr    error
	layout     *LayoutManifest
	layoutErr  error
	aliases    ColumnAliases
	aliasErr   error
	aliasCalls int
	gate       map[string]chan struct{}
	mu         sync.Mutex
}

func (s *stubSource) FetchData(ctx context.Context, project string) (DataManifest, error) {
	if gate, ok := s.gate[project]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return DataManifest{}, ctx.Err()
		}
	}
	return s.data, s.dataErr
}

func (s *stubSource) FetchLayout(context.Context, string) (LayoutManifest, error) {
	if s.layoutErr != nil {
		return LayoutManifest{}, s.layoutErr
	}
	if s.layout == nil {
		return LayoutManifest{}, ErrLayoutNotFound
	}
	return *s.layout, nil
}

func (s *stubSource) FetchColumnAliases(context.Context, string) (ColumnAliases, error) {
	s.mu.Lock()
	s.aliasCalls++
	s.mu.Unlock()
	return s.aliases, s.aliasErr
}

type recordingTelemetry struct {
	mu       sync.Mutex
	events   []string
	payloads []map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func (r *recordingTelemetry) payload(event string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e == event {
			return r.payloads[i]
		}
	}
	return nil
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func flatManifest() DataManifest {
	return DataManifest{DashboardSections: []WidgetDescriptor{
		{ID: "filters", BlockKind: KindFilterPanel},
		dataSection("table", sampleRecords()...),
		{BlockKind: "TextBlock", Settings: map[string]any{"text": "hello"}},
	}}
}

func TestOrchestratorLoadDefaultLayout(t *testing.T) {
	source := &stubSource{data: flatManifest(), aliases: ColumnAliases{"sector": "Industry"}}
	orch := NewOrchestrator(Options{Source: source})

	col, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, LayoutDefault, col.Layout)
	require.Len(t, col.Tabs, 1)
	assert.Equal(t, "main", col.Tabs[0].ID)
	assert.Len(t, col.Tabs[0].Content, 3)
	assert.Equal(t, "section-2", col.Tabs[0].Content[2].ID)
	assert.True(t, col.FilterPanelEnabled)
	assert.Equal(t, uint64(1), col.Generation)

	coord := orch.Coordinator()
	assert.Equal(t, "main", coord.ActiveTab())
	assert.Len(t, coord.VisibleRecords("main"), 4)
	for _, dim := range coord.Dimensions("main") {
		if dim.Type == "sector" {
			assert.Equal(t, "Industry", dim.Label)
		}
	}
}

func TestOrchestratorLayoutTabs(t *testing.T) {
	source := &stubSource{
		data: flatManifest(),
		layout: &LayoutManifest{Tabs: []LayoutTab{
			{ID: "all", Label: "All", Sections: []string{"filters", "table"}},
			{ID: "eu", Sections: []string{"table", "ghost"}, Filter: map[string]any{"region": "EU"}},
			{ID: "all", Label: "Duplicate"},
		}},
	}
	telemetry := &recordingTelemetry{}
	orch := NewOrchestrator(Options{Source: source, Telemetry: telemetry})

	col, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, LayoutCustom, col.Layout)
	require.Equal(t, []string{"all", "eu"}, col.TabIDs())
	assert.True(t, col.Tabs[0].HasFilterPanel)
	assert.False(t, col.Tabs[1].HasFilterPanel)
	assert.Equal(t, "eu", col.Tabs[1].Label)
	assert.Len(t, orch.Coordinator().VisibleRecords("eu"), 2)
	assert.True(t, telemetry.has("dashboard.layout.unknown_section"))
	assert.True(t, telemetry.has("dashboard.layout.duplicate_tab"))
}

func TestOrchestratorContainerTabs(t *testing.T) {
	source := &stubSource{data: DataManifest{DashboardSections: []WidgetDescriptor{
		{ID: "intro", BlockKind: "TextBlock", Settings: map[string]any{"text": "hi"}},
		{ID: "tabs", BlockKind: KindTabbedContainer, Settings: map[string]any{
			"tabs": []any{
				map[string]any{
					"id":      "eu",
					"label":   "Europe",
					"filter":  map[string]any{"region": "EU"},
					"content": []any{
						map[string]any{"blockKind": KindFilterPanel},
						map[string]any{"blockKind": "DataTable", "settings": map[string]any{"data": recordsAsAny()}},
					},
				},
				map[string]any{
					"label":    "US",
					"settings": map[string]any{"filter": map[string]any{"region": []any{"US"}}},
					"content":  []any{
						map[string]any{"blockKind": "DataTable", "settings": map[string]any{"data": recordsAsAny()}},
					},
				},
			},
		}},
	}}}
	orch := NewOrchestrator(Options{Source: source})

	col, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, LayoutContainer, col.Layout)
	require.Equal(t, []string{"eu", "tabs-tab-1"}, col.TabIDs())
	assert.Equal(t, "intro", col.Tabs[0].Content[0].ID)
	assert.True(t, col.FilterPanelEnabled)
	assert.True(t, col.Tabs[0].HasFilterPanel)
	assert.False(t, col.Tabs[1].HasFilterPanel)

	coord := orch.Coordinator()
	assert.Len(t, coord.VisibleRecords("eu"), 2)
	assert.Len(t, coord.VisibleRecords("tabs-tab-1"), 1)
}

func TestOrchestratorNoFilterPanel(t *testing.T) {
	source := &stubSource{data: DataManifest{DashboardSections: []WidgetDescriptor{dataSection("t", sampleRecords()...)}}}
	col, err := NewOrchestrator(Options{Source: source}).Load(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, col.FilterPanelEnabled)
}

func TestOrchestratorSkipsInvalidSections(t *testing.T) {
	telemetry := &recordingTelemetry{}
	source := &stubSource{data: DataManifest{DashboardSections: []WidgetDescriptor{
		{ID: "bad", BlockKind: "DataTable", Settings: map[string]any{"data": "oops"}},
		{ID: "custom", BlockKind: "SomethingNew", Settings: map[string]any{"data": recordsAsAny()}},
	}}}
	col, err := NewOrchestrator(Options{Source: source, Telemetry: telemetry}).Load(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, col.Tabs[0].Content, 1)
	assert.Equal(t, "custom", col.Tabs[0].Content[0].ID)
	assert.True(t, telemetry.has("dashboard.section.invalid"))
}

func TestOrchestratorLayoutFailureFallsBack(t *testing.T) {
	telemetry := &recordingTelemetry{}
	source := &stubSource{data: flatManifest(), layoutErr: errors.New("500")}
	col, err := NewOrchestrator(Options{Source: source, Telemetry: telemetry}).Load(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, LayoutDefault, col.Layout)
	assert.True(t, telemetry.has("dashboard.layout.fallback"))
}

func TestOrchestratorAliasFailureUsesRawNames(t *testing.T) {
	source := &stubSource{data: flatManifest(), aliasErr: errors.New("timeout")}
	orch := NewOrchestrator(Options{Source: source})
	_, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	for _, dim := range orch.Coordinator().Dimensions("main") {
		assert.Equal(t, dim.Type, dim.Label)
	}
}

func TestOrchestratorDataFailureIsFatal(t *testing.T) {
	cause := errors.New("connection refused")
	source := &stubSource{dataErr: cause}
	orch := NewOrchestrator(Options{Source: source})

	_, err := orch.Load(context.Background(), "acme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDashboardLoad))
	assert.True(t, errors.Is(err, cause))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "acme", loadErr.Project)
	assert.Empty(t, orch.Coordinator().Collection().Tabs)
}

func TestOrchestratorRequiresSourceAndProject(t *testing.T) {
	_, err := NewOrchestrator(Options{}).Load(context.Background(), "acme")
	require.Error(t, err)
	_, err = NewOrchestrator(Options{Source: &stubSource{}}).Load(context.Background(), "  ")
	require.Error(t, err)
}

func TestOrchestratorSupersededLoadIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	source := &stubSource{data: flatManifest(), gate: map[string]chan struct{}{"old": gate}}
	orch := NewOrchestrator(Options{Source: source})

	done := make(chan error, 1)
	go func() {
		_, err := orch.Load(context.Background(), "old")
		done <- err
	}()
	deadline := time.Now().Add(time.Second)
	for orch.generation.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first load never started")
		}
		time.Sleep(time.Millisecond)
	}

	col, err := orch.Load(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), col.Generation)

	close(gate)
	require.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, "new", orch.Coordinator().Collection().Project)
}

func TestOrchestratorAliasCache(t *testing.T) {
	source := &stubSource{data: flatManifest(), aliases: ColumnAliases{}}
	orch := NewOrchestrator(Options{Source: source, AliasCache: NewAliasCache(time.Minute)})
	for i := 0; i < 3; i++ {
		_, err := orch.Load(context.Background(), "acme")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, source.aliasCalls)
}

func TestOrchestratorReloadKeepsSelection(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{data: flatManifest()}
	orch := NewOrchestrator(Options{Source: source})
	_, err := orch.Load(ctx, "acme")
	require.NoError(t, err)

	orch.Coordinator().Toggle(ctx, "main", "sector", "Tech")
	_, err = orch.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, orch.Coordinator().VisibleRecords("main"), 2)

	_, err = orch.Load(ctx, "globex")
	require.NoError(t, err)
	assert.Len(t, orch.Coordinator().VisibleRecords("main"), 4)
}

func recordsAsAny() []any {
	records := sampleRecords()
	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = map[string]any(rec)
	}
	return out
}

func TestOrchestratorHonoursWidgetFilter(t *testing.T) {
	filtered := dataSection("health", sampleRecords()...)
	filtered.Settings["filter"] = map[string]any{"sector": "Healthcare"}
	data := DataManifest{DashboardSections: []WidgetDescriptor{filtered, dataSection("table", sampleRecords()...)}}

	orch := NewOrchestrator(Options{Source: &stubSource{data: data}})
	_, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	// 1 healthcare row from the filtered widget plus all 4 rows of the plain one
	assert.Len(t, orch.Coordinator().VisibleRecords("main"), 5)

	orch = NewOrchestrator(Options{Source: &stubSource{
		data: data,
		layout: &LayoutManifest{Tabs: []LayoutTab{
			{ID: "health", Sections: []string{"health"}},
			{ID: "eu-health", Sections: []string{"health"}, Filter: map[string]any{"region": "EU"}},
			{ID: "us", Sections: []string{"health"}, Filter: map[string]any{"region": "US"}},
		}},
	}})
	_, err = orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	coord := orch.Coordinator()
	records := coord.VisibleRecords("health")
	require.Len(t, records, 1)
	assert.Equal(t, "Healthcare", records[0]["sector"])
	assert.Len(t, coord.VisibleRecords("eu-health"), 1)
	assert.Empty(t, coord.VisibleRecords("us"))
}

func TestOrchestratorReadsFilterPanelSettings(t *testing.T) {
	data := DataManifest{DashboardSections: []WidgetDescriptor{
		{ID: "filters", BlockKind: KindFilterPanel, Settings: map[string]any{
			"hidden":     []any{"revenue"},
			"hideSingle": true,
		}},
		dataSection("table", sampleRecords()...),
	}}
	orch := NewOrchestrator(Options{Source: &stubSource{data: data}})
	col, err := orch.Load(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, col.Tabs[0].FilterPanel)
	assert.Equal(t, []string{"revenue"}, col.Tabs[0].FilterPanel.Hidden)
	assert.True(t, col.Tabs[0].FilterPanel.HideSingle)

	snap, err := NewController(orch.Coordinator()).Snapshot(context.Background())
	require.NoError(t, err)
	types := make([]string, 0, len(snap.Dimensions))
	for _, dim := range snap.Dimensions {
		types = append(types, dim.Type)
	}
	assert.Equal(t, []string{"region", "sector"}, types)
}

func TestOrchestratorReportsInvalidSettingsPointer(t *testing.T) {
	source := &stubSource{data: DataManifest{DashboardSections: []WidgetDescriptor{
		{ID: "broken", BlockKind: "BarChart", Settings: map[string]any{"data": "rows"}},
		dataSection("table", sampleRecords()...),
	}}}
	telemetry := &recordingTelemetry{}
	col, err := NewOrchestrator(Options{Source: source, Telemetry: telemetry}).Load(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, col.Tabs, 1)
	require.Len(t, col.Tabs[0].Content, 1)

	payload := telemetry.payload("dashboard.section.invalid")
	require.NotNil(t, payload)
	assert.Equal(t, "broken", payload["section_id"])
	assert.Equal(t, "/data", payload["pointer"])
}

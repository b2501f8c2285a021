package dashboard

import (
	"context"
	"time"
)

// ManifestSource fetches the declarative documents a dashboard is built from.
// Implementations live outside this package (HTTP, filesystem, fixtures).
type ManifestSource interface {
	// FetchData returns the data manifest; any error is fatal for the dashboard.
	FetchData(ctx context.Context, project string) (DataManifest, error)
	// FetchLayout returns the layout tree or an error wrapping ErrLayoutNotFound
	// when the project has no custom layout.
	FetchLayout(ctx context.Context, project string) (LayoutManifest, error)
	// FetchColumnAliases returns raw attribute name -> display label.
	FetchColumnAliases(ctx context.Context, project string) (ColumnAliases, error)
}

// Observer receives coordinator events. Calls happen outside coordinator locks
// so observers may query the coordinator back.
type Observer interface {
	TabChanged(ctx context.Context, event TabChangeEvent)
	ContextReported(ctx context.Context, report ContextReport)
}

// KindRegistry stores the widget kinds a dashboard knows how to dispatch.
type KindRegistry interface {
	RegisterKind(def KindDefinition) error
	Kind(code string) (KindDefinition, bool)
	Kinds() []KindDefinition
}

// Record is a single data row. Attributes are discovered at runtime.
type Record map[string]any

// FilterDimension is a filterable attribute and the distinct values observed for it.
type FilterDimension struct {
	Type    string `json:"type" yaml:"type"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Options []any  `json:"options" yaml:"options"`
}

// TabState is the selection scoped to one tab.
type TabState struct {
	TabID     string          `json:"tab_id"`
	Selection FilterSelection `json:"selection"`
}

// WidgetDescriptor is a single dashboard section as declared by the data manifest.
type WidgetDescriptor struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	BlockKind string         `json:"blockKind" yaml:"blockKind"`
	Title     string         `json:"title,omitempty" yaml:"title,omitempty"`
	Settings  map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Tab is an independently addressable view with its own content and filter scope.
type Tab struct {
	ID              string             `json:"id"`
	Label           string             `json:"label"`
	Content         []WidgetDescriptor `json:"content"`
	RequiredFilters map[string]any     `json:"required_filters,omitempty"`
	HasFilterPanel  bool               `json:"has_filter_panel"`
	// FilterPanel holds the display options of the tab's filter panel, nil
	// when the tab has none.
	FilterPanel *FilterPanelSettings `json:"filter_panel,omitempty"`
}

// FilterPanelSettings are the display options declared on a filter panel
// section (settings.hidden and settings.hideSingle).
type FilterPanelSettings struct {
	Hidden     []string `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	HideSingle bool     `json:"hide_single,omitempty" yaml:"hide_single,omitempty"`
}

// LayoutKind reports where the tab structure of a collection came from.
type LayoutKind string

const (
	// LayoutCustom means the project's layout manifest defined the tabs.
	LayoutCustom LayoutKind = "custom"
	// LayoutContainer means TabbedContainer sections in the data manifest defined the tabs.
	LayoutContainer LayoutKind = "container"
	// LayoutDefault is the single-column, single-tab fallback.
	LayoutDefault LayoutKind = "default"
)

// TabCollection is the static tab structure built from a project's manifests.
type TabCollection struct {
	Project            string        `json:"project"`
	Generation         uint64        `json:"generation"`
	Tabs               []Tab         `json:"tabs"`
	FilterPanelEnabled bool          `json:"filter_panel_enabled"`
	Layout             LayoutKind    `json:"layout"`
	Aliases            ColumnAliases `json:"aliases,omitempty"`
}

// Tab looks up a tab by id.
func (c TabCollection) Tab(id string) (Tab, bool) {
	for _, tab := range c.Tabs {
		if tab.ID == id {
			return tab, true
		}
	}
	return Tab{}, false
}

// TabIDs returns tab ids in declaration order.
func (c TabCollection) TabIDs() []string {
	ids := make([]string, len(c.Tabs))
	for i, tab := range c.Tabs {
		ids[i] = tab.ID
	}
	return ids
}

// DataManifest is the `{project}-injected.json` document.
type DataManifest struct {
	DashboardSections []WidgetDescriptor `json:"dashboardSections" yaml:"dashboardSections"`
}

// LayoutManifest is the `{project}_layout.json` document. Only the tab
// structure is interpreted; the rest of the tree is presentation.
type LayoutManifest struct {
	Columns int         `json:"columns,omitempty" yaml:"columns,omitempty"`
	Tabs    []LayoutTab `json:"tabs,omitempty" yaml:"tabs,omitempty"`
}

// LayoutTab places data manifest sections (by id) into a tab.
type LayoutTab struct {
	ID       string         `json:"id" yaml:"id"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Sections []string       `json:"sections,omitempty" yaml:"sections,omitempty"`
	Filter   map[string]any `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// TabChangeEvent is emitted when the active tab actually changes.
type TabChangeEvent struct {
	ID        string    `json:"id"`
	OldTabID  string    `json:"old_tab_id"`
	NewTabID  string    `json:"new_tab_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextReport tells sibling components what a tab currently shows.
type ContextReport struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	TabID           string          `json:"tab_id"`
	Records         []Record        `json:"records"`
	RequiredFilters map[string]any  `json:"required_filters,omitempty"`
	Selection       FilterSelection `json:"selection"`
	Timestamp       time.Time       `json:"timestamp"`
}

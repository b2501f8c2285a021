package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownTab is returned when a tab id is not part of the installed collection.
var ErrUnknownTab = errors.New("dashboard: unknown tab")

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Store     *FilterStore
	Telemetry Telemetry
	Clock     func() time.Time
	NewID     func() string
}

// Coordinator owns the active tab, mediates selection changes, and reports
// what each tab shows to registered observers.
type Coordinator struct {
	mu        sync.RWMutex
	store     *FilterStore
	telemetry Telemetry
	clock     func() time.Time
	newID     func() string

	collection TabCollection
	records    map[string][]Record
	dims       map[string][]FilterDimension
	active     string
	reported   map[string]string

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int
}

// NewCoordinator builds a Coordinator with safe defaults.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.Store == nil {
		opts.Store = NewFilterStore()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Coordinator{
		store:     opts.Store,
		telemetry: normalizeTelemetry(opts.Telemetry),
		clock:     opts.Clock,
		newID:     opts.NewID,
		records:   map[string][]Record{},
		dims:      map[string][]FilterDimension{},
		reported:  map[string]string{},
		observers: map[int]Observer{},
	}
}

// Subscribe registers an observer and returns a func that removes it.
func (c *Coordinator) Subscribe(obs Observer) func() {
	if obs == nil {
		return func() {}
	}
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = obs
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// Install replaces the tab collection. Tab state is reset when the collection
// belongs to a different project; a refresh of the same project keeps the
// state of surviving tabs, pruned against the new options.
func (c *Coordinator) Install(ctx context.Context, col TabCollection) {
	c.mu.Lock()
	prev := c.collection
	if prev.Project != "" && prev.Project != col.Project {
		c.store.Reset()
	} else {
		c.store.Retain(col.TabIDs())
	}

	c.collection = col
	c.records = make(map[string][]Record, len(col.Tabs))
	c.dims = make(map[string][]FilterDimension, len(col.Tabs))
	for _, tab := range col.Tabs {
		records := tabRecords(tab)
		c.records[tab.ID] = records
		c.dims[tab.ID] = DeriveFiltersWithLabels(records, col.Aliases)
	}
	pruned := 0
	for _, id := range c.store.Tabs() {
		if c.store.Prune(id, c.dims[id]) {
			pruned++
		}
	}

	old := c.active
	if _, ok := col.Tab(old); !ok {
		c.active = ""
		if len(col.Tabs) > 0 {
			c.active = col.Tabs[0].ID
		}
	}
	var out pending
	if c.active != "" {
		c.store.Ensure(c.active)
	}
	if c.active != old {
		out.change = c.changeEvent(old, c.active)
	}
	c.reported = map[string]string{}
	if report, ok := c.reportLocked(c.active, true); ok {
		out.reports = append(out.reports, report)
	}
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.collection.install", map[string]any{
		"project":    col.Project,
		"generation": col.Generation,
		"tabs":       len(col.Tabs),
		"pruned":     pruned,
	})
	c.dispatch(ctx, out)
}

// SelectTab makes tabID the active tab. Re-selecting the active tab is a no-op.
func (c *Coordinator) SelectTab(ctx context.Context, tabID string) error {
	c.mu.Lock()
	if _, ok := c.collection.Tab(tabID); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	if tabID == c.active {
		c.mu.Unlock()
		return nil
	}
	old := c.active
	c.active = tabID
	c.store.Ensure(tabID)
	out := pending{change: c.changeEvent(old, tabID)}
	if report, ok := c.reportLocked(tabID, true); ok {
		out.reports = append(out.reports, report)
	}
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.tab.select", map[string]any{
		"old_tab_id": old,
		"new_tab_id": tabID,
	})
	c.dispatch(ctx, out)
	return nil
}

// Toggle flips value within the tab's dimension and reports whether it is
// selected afterwards. Values that are not options of a known tab are dropped
// immediately; toggles for tabs not yet installed are kept as-is.
func (c *Coordinator) Toggle(ctx context.Context, tabID, dimension string, value any) bool {
	c.mu.Lock()
	selected := c.store.Toggle(tabID, dimension, value)
	if dims, ok := c.dims[tabID]; ok && c.store.Prune(tabID, dims) {
		selected = c.store.Selection(tabID)[dimension].Has(value)
	}
	out := c.selectionChangedLocked(tabID)
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.filter.toggle", map[string]any{
		"tab_id":    tabID,
		"dimension": dimension,
		"selected":  selected,
	})
	c.dispatch(ctx, out)
	return selected
}

// ClearDimension removes every selected value of one dimension in a tab.
func (c *Coordinator) ClearDimension(ctx context.Context, tabID, dimension string) {
	c.mu.Lock()
	c.store.ClearDimension(tabID, dimension)
	out := c.selectionChangedLocked(tabID)
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.filter.clear_dimension", map[string]any{
		"tab_id":    tabID,
		"dimension": dimension,
	})
	c.dispatch(ctx, out)
}

// ClearAll resets the tab's selection.
func (c *Coordinator) ClearAll(ctx context.Context, tabID string) {
	c.mu.Lock()
	c.store.ClearAll(tabID)
	out := c.selectionChangedLocked(tabID)
	c.mu.Unlock()

	c.telemetry.Record(ctx, "dashboard.filter.clear_all", map[string]any{"tab_id": tabID})
	c.dispatch(ctx, out)
}

// VisibleRecords applies the tab's required filters and then its selection.
// Unknown tabs have no records.
func (c *Coordinator) VisibleRecords(tabID string) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibleLocked(tabID)
}

// Selection returns a copy of the tab's current selection.
func (c *Coordinator) Selection(tabID string) FilterSelection {
	return c.store.Selection(tabID)
}

// Dimensions returns the filter dimensions derived for the tab.
func (c *Coordinator) Dimensions(tabID string) []FilterDimension {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneDimensions(c.dims[tabID])
}

// ActiveTab returns the active tab id, empty before a collection is installed.
func (c *Coordinator) ActiveTab() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Collection returns the installed collection.
func (c *Coordinator) Collection() TabCollection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection
}

// Report builds the current context report for a tab without emitting it.
func (c *Coordinator) Report(tabID string) (ContextReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buildReport(tabID)
}

type pending struct {
	change  *TabChangeEvent
	reports []ContextReport
}

func (c *Coordinator) dispatch(ctx context.Context, out pending) {
	if out.change == nil && len(out.reports) == 0 {
		return
	}
	c.obsMu.RLock()
	observers := make([]Observer, 0, len(c.observers))
	for _, obs := range c.observers {
		observers = append(observers, obs)
	}
	c.obsMu.RUnlock()
	for _, obs := range observers {
		if out.change != nil {
			obs.TabChanged(ctx, *out.change)
		}
		for _, report := range out.reports {
			obs.ContextReported(ctx, report)
		}
	}
}

func (c *Coordinator) changeEvent(oldTab, newTab string) *TabChangeEvent {
	return &TabChangeEvent{
		ID:        c.newID(),
		OldTabID:  oldTab,
		NewTabID:  newTab,
		Timestamp: c.clock(),
	}
}

func (c *Coordinator) selectionChangedLocked(tabID string) pending {
	var out pending
	if report, ok := c.reportLocked(tabID, false); ok {
		out.reports = append(out.reports, report)
	}
	return out
}

// reportLocked builds a report and records its fingerprint. Unless forced,
// nothing is returned when neither the visible count nor the selection moved.
func (c *Coordinator) reportLocked(tabID string, force bool) (ContextReport, bool) {
	report, ok := c.buildReport(tabID)
	if !ok {
		return ContextReport{}, false
	}
	fp := fmt.Sprintf("%d|%s", len(report.Records), report.Selection.fingerprint())
	if !force && c.reported[tabID] == fp {
		return ContextReport{}, false
	}
	c.reported[tabID] = fp
	return report, true
}

func (c *Coordinator) buildReport(tabID string) (ContextReport, bool) {
	tab, ok := c.collection.Tab(tabID)
	if !ok {
		return ContextReport{}, false
	}
	return ContextReport{
		ID:              c.newID(),
		Label:           tab.Label,
		TabID:           tab.ID,
		Records:         c.visibleLocked(tabID),
		RequiredFilters: cloneFilter(tab.RequiredFilters),
		Selection:       c.store.Selection(tabID),
		Timestamp:       c.clock(),
	}, true
}

func (c *Coordinator) visibleLocked(tabID string) []Record {
	base := c.records[tabID]
	sel := c.store.Selection(tabID)
	visible := make([]Record, 0, len(base))
	for _, rec := range base {
		if sel.Matches(rec) {
			visible = append(visible, rec)
		}
	}
	return visible
}

// tabRecords collects settings.data from the tab's content and keeps the
// records that satisfy both the tab's required filters and the settings.filter
// of the widget declaring them.
func tabRecords(tab Tab) []Record {
	var records []Record
	for _, desc := range tab.Content {
		widgetFilter := desc.Filter()
		for _, rec := range desc.Data() {
			if MatchesRequired(rec, tab.RequiredFilters) && MatchesRequired(rec, widgetFilter) {
				records = append(records, rec)
			}
		}
	}
	return records
}

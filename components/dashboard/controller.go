package dashboard

import (
	"context"
	"errors"
)

// TabSummary is the per-tab entry of a Snapshot.
type TabSummary struct {
	ID              string         `json:"id" yaml:"id"`
	Label           string         `json:"label" yaml:"label"`
	RequiredFilters map[string]any `json:"required_filters,omitempty" yaml:"required_filters,omitempty"`
	HasFilterPanel  bool           `json:"has_filter_panel" yaml:"has_filter_panel"`
	Visible         int            `json:"visible" yaml:"visible"`
	Active          bool           `json:"active" yaml:"active"`
}

// Snapshot is the full view state transports hand to a frontend.
type Snapshot struct {
	Project            string              `json:"project" yaml:"project"`
	Generation         uint64              `json:"generation" yaml:"generation"`
	Layout             LayoutKind          `json:"layout" yaml:"layout"`
	ActiveTab          string              `json:"active_tab" yaml:"active_tab"`
	FilterPanelEnabled bool                `json:"filter_panel_enabled" yaml:"filter_panel_enabled"`
	Tabs               []TabSummary        `json:"tabs" yaml:"tabs"`
	Dimensions         []FilterDimension   `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Selection          map[string][]string `json:"selection" yaml:"selection"`
	Records            []Record            `json:"records" yaml:"records"`
}

// SnapshotSource is the read side of a Coordinator.
type SnapshotSource interface {
	Collection() TabCollection
	ActiveTab() string
	VisibleRecords(tabID string) []Record
	Dimensions(tabID string) []FilterDimension
	Selection(tabID string) FilterSelection
}

// Controller assembles snapshots of the coordinator state for transports.
type Controller struct {
	source SnapshotSource
}

// NewController wires a coordinator into a controller.
func NewController(source SnapshotSource) *Controller {
	return &Controller{source: source}
}

// Snapshot describes the active tab in full and every other tab in summary.
// Dimensions are only included when the collection enables the filter panel,
// minus the ones the active tab's panel hides.
func (c *Controller) Snapshot(_ context.Context) (Snapshot, error) {
	if c == nil || c.source == nil {
		return Snapshot{}, errors.New("dashboard: controller requires a coordinator")
	}
	col := c.source.Collection()
	active := c.source.ActiveTab()
	snap := Snapshot{
		Project:            col.Project,
		Generation:         col.Generation,
		Layout:             col.Layout,
		ActiveTab:          active,
		FilterPanelEnabled: col.FilterPanelEnabled,
		Tabs:               make([]TabSummary, 0, len(col.Tabs)),
		Selection:          map[string][]string{},
		Records:            []Record{},
	}
	for _, tab := range col.Tabs {
		snap.Tabs = append(snap.Tabs, TabSummary{
			ID:              tab.ID,
			Label:           tab.Label,
			RequiredFilters: tab.RequiredFilters,
			HasFilterPanel:  tab.HasFilterPanel,
			Visible:         len(c.source.VisibleRecords(tab.ID)),
			Active:          tab.ID == active,
		})
	}
	if active == "" {
		return snap, nil
	}
	snap.Records = c.source.VisibleRecords(active)
	for dim, set := range c.source.Selection(active) {
		snap.Selection[dim] = set.Keys()
	}
	if col.FilterPanelEnabled {
		tab, _ := col.Tab(active)
		snap.Dimensions = tab.FilterPanel.Visible(c.source.Dimensions(active))
	}
	return snap, nil
}

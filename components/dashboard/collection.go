package dashboard

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultTabID    = "main"
	defaultTabLabel = "Dashboard"
)

// BuildCollection merges a data manifest, an optional layout and column
// aliases into a TabCollection. Tabs come from the layout's tabs when present,
// otherwise from TabbedContainer sections, otherwise a single default tab
// holds every section. Sections that fail their kind's schema are skipped.
func (o *Orchestrator) BuildCollection(ctx context.Context, project string, data DataManifest, layout *LayoutManifest, aliases ColumnAliases) TabCollection {
	sections := o.normalizeSections(ctx, project, data.DashboardSections)

	col := TabCollection{
		Project: project,
		Aliases: aliases,
	}
	switch {
	case layout != nil && len(layout.Tabs) > 0:
		col.Layout = LayoutCustom
		col.Tabs = o.layoutTabs(ctx, project, layout.Tabs, sections)
	case o.hasContainers(sections):
		col.Layout = LayoutContainer
		col.Tabs = o.containerTabs(ctx, project, sections)
	}
	if len(col.Tabs) == 0 {
		col.Layout = LayoutDefault
		if layout != nil {
			col.Layout = LayoutCustom
		}
		col.Tabs = []Tab{{
			ID:      defaultTabID,
			Label:   defaultTabLabel,
			Content: sections,
		}}
	}

	for i := range col.Tabs {
		if panel, ok := o.findFilterPanel(col.Tabs[i].Content); ok {
			settings := panel.filterPanelSettings()
			col.Tabs[i].HasFilterPanel = true
			col.Tabs[i].FilterPanel = &settings
		}
		col.FilterPanelEnabled = col.FilterPanelEnabled || col.Tabs[i].HasFilterPanel
	}
	return col
}

// normalizeSections assigns ids to anonymous sections and drops sections
// whose settings fail validation.
func (o *Orchestrator) normalizeSections(ctx context.Context, project string, raw []WidgetDescriptor) []WidgetDescriptor {
	sections := make([]WidgetDescriptor, 0, len(raw))
	for idx, desc := range raw {
		if strings.TrimSpace(desc.ID) == "" {
			desc.ID = fmt.Sprintf("section-%d", idx)
		}
		if !o.validDescriptor(ctx, project, desc) {
			continue
		}
		sections = append(sections, desc)
	}
	return sections
}

func (o *Orchestrator) validDescriptor(ctx context.Context, project string, desc WidgetDescriptor) bool {
	def, ok := o.opts.Kinds.Kind(desc.BlockKind)
	if !ok {
		return true
	}
	if err := o.opts.Validator.Validate(def, desc.Settings); err != nil {
		payload := map[string]any{
			"project":    project,
			"section_id": desc.ID,
			"block_kind": desc.BlockKind,
			"error":      err.Error(),
		}
		if pointer, ok := SettingsPointer(err); ok {
			payload["pointer"] = pointer
		}
		o.recordTelemetry(ctx, "dashboard.section.invalid", payload)
		return false
	}
	return true
}

func (o *Orchestrator) layoutTabs(ctx context.Context, project string, specs []LayoutTab, sections []WidgetDescriptor) []Tab {
	index := make(map[string]WidgetDescriptor, len(sections))
	for _, desc := range sections {
		index[desc.ID] = desc
	}
	tabs := make([]Tab, 0, len(specs))
	seen := map[string]struct{}{}
	for idx, spec := range specs {
		tab := Tab{
			ID:              strings.TrimSpace(spec.ID),
			Label:           strings.TrimSpace(spec.Label),
			RequiredFilters: cloneFilter(spec.Filter),
		}
		if tab.ID == "" {
			tab.ID = fmt.Sprintf("tab-%d", idx)
		}
		if _, dup := seen[tab.ID]; dup {
			o.recordTelemetry(ctx, "dashboard.layout.duplicate_tab", map[string]any{
				"project": project,
				"tab_id":  tab.ID,
			})
			continue
		}
		seen[tab.ID] = struct{}{}
		if tab.Label == "" {
			tab.Label = tab.ID
		}
		for _, ref := range spec.Sections {
			desc, ok := index[ref]
			if !ok {
				o.recordTelemetry(ctx, "dashboard.layout.unknown_section", map[string]any{
					"project":    project,
					"tab_id":     tab.ID,
					"section_id": ref,
				})
				continue
			}
			tab.Content = append(tab.Content, desc)
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

func (o *Orchestrator) hasContainers(sections []WidgetDescriptor) bool {
	for _, desc := range sections {
		if hasCapability(o.opts.Kinds, desc, CapabilityContainer) {
			return true
		}
	}
	return false
}

// containerTabs expands TabbedContainer sections into tabs. Sections outside
// any container are shared by every tab and come first in each tab's content.
func (o *Orchestrator) containerTabs(ctx context.Context, project string, sections []WidgetDescriptor) []Tab {
	var shared []WidgetDescriptor
	var specs []tabSpec
	for _, desc := range sections {
		if hasCapability(o.opts.Kinds, desc, CapabilityContainer) {
			specs = append(specs, desc.tabSpecs()...)
			continue
		}
		shared = append(shared, desc)
	}
	tabs := make([]Tab, 0, len(specs))
	seen := map[string]struct{}{}
	for _, spec := range specs {
		if _, dup := seen[spec.ID]; dup {
			o.recordTelemetry(ctx, "dashboard.layout.duplicate_tab", map[string]any{
				"project": project,
				"tab_id":  spec.ID,
			})
			continue
		}
		seen[spec.ID] = struct{}{}
		content := make([]WidgetDescriptor, 0, len(shared)+len(spec.Content))
		content = append(content, shared...)
		for _, desc := range spec.Content {
			if o.validDescriptor(ctx, project, desc) {
				content = append(content, desc)
			}
		}
		tabs = append(tabs, Tab{
			ID:              spec.ID,
			Label:           spec.Label,
			Content:         content,
			RequiredFilters: cloneFilter(spec.Filter),
		})
	}
	return tabs
}

// findFilterPanel returns the first filter panel section, looking inside
// nested containers.
func (o *Orchestrator) findFilterPanel(content []WidgetDescriptor) (WidgetDescriptor, bool) {
	for _, desc := range content {
		if hasCapability(o.opts.Kinds, desc, CapabilityFilterPanel) {
			return desc, true
		}
		if hasCapability(o.opts.Kinds, desc, CapabilityContainer) {
			for _, spec := range desc.tabSpecs() {
				if panel, ok := o.findFilterPanel(spec.Content); ok {
					return panel, true
				}
			}
		}
	}
	return WidgetDescriptor{}, false
}

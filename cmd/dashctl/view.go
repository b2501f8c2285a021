package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
)

type filterArg struct {
	dimension string
	value     string
}

// parseFilters reads dimension=value pairs.
func parseFilters(raw []string) ([]filterArg, error) {
	out := make([]filterArg, 0, len(raw))
	for _, item := range raw {
		dim, value, ok := strings.Cut(item, "=")
		dim = strings.TrimSpace(dim)
		if !ok || dim == "" {
			return nil, fmt.Errorf("dashctl: filter %q must look like dimension=value", item)
		}
		out = append(out, filterArg{dimension: dim, value: strings.TrimSpace(value)})
	}
	return out, nil
}

type inspectCmd struct {
	Project string `arg:"" optional:"" help:"Project name (defaults to config project)."`
}

func (cmd *inspectCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(g, nil)
	if err != nil {
		return err
	}
	defer a.close()
	col, err := a.load(ctx, cmd.Project)
	if err != nil {
		return err
	}
	return printCollection(os.Stdout, col, a.coordinator)
}

func printCollection(w io.Writer, col dashboard.TabCollection, coord *dashboard.Coordinator) error {
	fmt.Fprintf(w, "project: %s (layout %s, filter panel %t)\n", col.Project, col.Layout, col.FilterPanelEnabled)
	for _, tab := range col.Tabs {
		marker := " "
		if tab.ID == coord.ActiveTab() {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s %q: %d records, %d sections\n", marker, tab.ID, tab.Label, len(coord.VisibleRecords(tab.ID)), len(tab.Content))
		if len(tab.RequiredFilters) > 0 {
			raw, err := json.Marshal(tab.RequiredFilters)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "    requires %s\n", raw)
		}
		for _, dim := range tab.FilterPanel.Visible(coord.Dimensions(tab.ID)) {
			values := make([]string, 0, len(dim.Options))
			for _, opt := range dim.Options {
				key, _ := dashboard.ValueKey(opt)
				values = append(values, key)
			}
			fmt.Fprintf(w, "    %s (%s): %s\n", dim.Label, dim.Type, strings.Join(values, ", "))
		}
	}
	return nil
}

type visibleCmd struct {
	Project string   `arg:"" optional:"" help:"Project name (defaults to config project)."`
	Tab     string   `help:"Tab to show (defaults to the first tab)."`
	Filter  []string `short:"f" help:"dimension=value to toggle on the tab (repeatable)."`
}

func (cmd *visibleCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(g, nil)
	if err != nil {
		return err
	}
	defer a.close()
	if _, err := a.load(ctx, cmd.Project); err != nil {
		return err
	}
	tabID, err := a.applyView(ctx, cmd.Tab, cmd.Filter)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(a.coordinator.VisibleRecords(tabID))
}

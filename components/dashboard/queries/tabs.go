package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// TabsInput carries no parameters; the installed collection is always used.
type TabsInput struct{}

// TabsResult lists the installed tabs and which one is active.
type TabsResult struct {
	Project            string          `json:"project"`
	ActiveTab          string          `json:"active_tab"`
	FilterPanelEnabled bool            `json:"filter_panel_enabled"`
	Tabs               []dashboard.Tab `json:"tabs"`
}

// TabsQuery reads the installed tab collection.
type TabsQuery struct {
	reader coordinatorReader
}

// NewTabsQuery builds the query.
func NewTabsQuery(reader coordinatorReader) *TabsQuery {
	return &TabsQuery{reader: reader}
}

var _ gocommand.Querier[TabsInput, TabsResult] = (*TabsQuery)(nil)

// Query returns the collection summary.
func (q *TabsQuery) Query(context.Context, TabsInput) (TabsResult, error) {
	if q.reader == nil {
		return TabsResult{}, errors.New("tabs query requires coordinator")
	}
	col := q.reader.Collection()
	tabs := col.Tabs
	if tabs == nil {
		tabs = []dashboard.Tab{}
	}
	return TabsResult{
		Project:            col.Project,
		ActiveTab:          q.reader.ActiveTab(),
		FilterPanelEnabled: col.FilterPanelEnabled,
		Tabs:               tabs,
	}, nil
}

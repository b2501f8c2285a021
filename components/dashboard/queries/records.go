package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// TabInput scopes a query to one tab. An empty TabID means the active tab.
type TabInput struct {
	TabID string `json:"tab_id"`
}

type coordinatorReader interface {
	ActiveTab() string
	Collection() dashboard.TabCollection
	VisibleRecords(tabID string) []dashboard.Record
	Selection(tabID string) dashboard.FilterSelection
	Dimensions(tabID string) []dashboard.FilterDimension
}

// resolveTab maps an empty id to the active tab and rejects unknown ids.
func resolveTab(reader coordinatorReader, tabID string) (string, error) {
	if reader == nil {
		return "", errors.New("query requires coordinator")
	}
	if tabID == "" {
		tabID = reader.ActiveTab()
	}
	if _, ok := reader.Collection().Tab(tabID); !ok {
		return "", dashboard.ErrUnknownTab
	}
	return tabID, nil
}

// VisibleRecordsQuery returns the records a tab currently shows.
type VisibleRecordsQuery struct {
	reader coordinatorReader
}

// NewVisibleRecordsQuery builds the query.
func NewVisibleRecordsQuery(reader coordinatorReader) *VisibleRecordsQuery {
	return &VisibleRecordsQuery{reader: reader}
}

var _ gocommand.Querier[TabInput, []dashboard.Record] = (*VisibleRecordsQuery)(nil)

// Query applies required filters and the tab's selection.
func (q *VisibleRecordsQuery) Query(_ context.Context, input TabInput) ([]dashboard.Record, error) {
	tabID, err := resolveTab(q.reader, input.TabID)
	if err != nil {
		return nil, err
	}
	return q.reader.VisibleRecords(tabID), nil
}

// SelectionQuery returns a tab's selection.
type SelectionQuery struct {
	reader coordinatorReader
}

// NewSelectionQuery builds the query.
func NewSelectionQuery(reader coordinatorReader) *SelectionQuery {
	return &SelectionQuery{reader: reader}
}

var _ gocommand.Querier[TabInput, dashboard.TabState] = (*SelectionQuery)(nil)

// Query returns a copy of the selection.
func (q *SelectionQuery) Query(_ context.Context, input TabInput) (dashboard.TabState, error) {
	tabID, err := resolveTab(q.reader, input.TabID)
	if err != nil {
		return dashboard.TabState{}, err
	}
	return dashboard.TabState{TabID: tabID, Selection: q.reader.Selection(tabID)}, nil
}

// FilterOptionsQuery returns the dimensions derived for a tab.
type FilterOptionsQuery struct {
	reader coordinatorReader
}

// NewFilterOptionsQuery builds the query.
func NewFilterOptionsQuery(reader coordinatorReader) *FilterOptionsQuery {
	return &FilterOptionsQuery{reader: reader}
}

var _ gocommand.Querier[TabInput, []dashboard.FilterDimension] = (*FilterOptionsQuery)(nil)

// Query returns no dimensions when the collection has no filter panel, and
// leaves out the dimensions the tab's panel hides.
func (q *FilterOptionsQuery) Query(_ context.Context, input TabInput) ([]dashboard.FilterDimension, error) {
	tabID, err := resolveTab(q.reader, input.TabID)
	if err != nil {
		return nil, err
	}
	col := q.reader.Collection()
	if !col.FilterPanelEnabled {
		return []dashboard.FilterDimension{}, nil
	}
	tab, _ := col.Tab(tabID)
	return tab.FilterPanel.Visible(q.reader.Dimensions(tabID)), nil
}

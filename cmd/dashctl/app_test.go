package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(&Globals{ManifestsDir: "testdata/manifests", LogLevel: "error"}, nil)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestAppLoadsLayoutTabsFromDirectory(t *testing.T) {
	a := newTestApp(t)
	col, err := a.load(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, dashboard.LayoutCustom, col.Layout)
	assert.True(t, col.FilterPanelEnabled)
	assert.Equal(t, []string{"all", "eu"}, col.TabIDs())
	assert.Len(t, a.coordinator.VisibleRecords("all"), 4)
	assert.Len(t, a.coordinator.VisibleRecords("eu"), 2)
}

func TestAppRequiresProject(t *testing.T) {
	a := newTestApp(t)
	_, err := a.load(context.Background(), "")
	require.Error(t, err)
}

func TestApplyViewSelectsTabAndToggles(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.load(ctx, "acme")
	require.NoError(t, err)

	tabID, err := a.applyView(ctx, "eu", []string{"sector=Tech"})
	require.NoError(t, err)
	assert.Equal(t, "eu", tabID)
	records := a.coordinator.VisibleRecords("eu")
	require.Len(t, records, 1)
	assert.EqualValues(t, 80, records[0]["revenue"])

	_, err = a.applyView(ctx, "ghost", nil)
	require.ErrorIs(t, err, dashboard.ErrUnknownTab)

	_, err = a.applyView(ctx, "", []string{"sector"})
	require.Error(t, err)
}

func TestPrintCollectionListsTabsAndDimensions(t *testing.T) {
	a := newTestApp(t)
	col, err := a.load(context.Background(), "acme")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printCollection(&buf, col, a.coordinator))
	out := buf.String()
	assert.Contains(t, out, `* all "All accounts": 4 records`)
	assert.Contains(t, out, `requires {"region":"EU"}`)
	assert.Contains(t, out, "Energy, Healthcare, Tech")
}

func TestWriteSnapshotYAML(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.load(ctx, "acme")
	require.NoError(t, err)
	snap, err := dashboard.NewController(a.coordinator).Snapshot(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, snap))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "project: acme\n"), out)
	assert.Contains(t, out, "active_tab: all")
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("chatty")
	require.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	got, err := parseFilters([]string{"sector=Tech", " region = EU "})
	require.NoError(t, err)
	assert.Equal(t, []filterArg{{"sector", "Tech"}, {"region", "EU"}}, got)

	_, err = parseFilters([]string{"=Tech"})
	require.Error(t, err)
}

func TestSnapshotFileName(t *testing.T) {
	assert.Equal(t, "acme_corp_snapshot.yaml", snapshotFileName("AcmeCorp"))
}

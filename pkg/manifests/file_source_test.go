package manifests

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

func TestFileSourceReadsJSONAndYAML(t *testing.T) {
	src := NewFSSource(fstest.MapFS{
		"data/acme-injected.yaml": {Data: []byte(`
dashboardSections:
  - id: table
    blockKind: DataTable
    settings:
      data:
        - {sector: Tech, revenue: 10}
`)},
		"layouts/acme_layout.json":      {Data: []byte(`{"tabs":[{"id":"main","sections":["table"]}]}`)},
		"data/column_aliases/acme.json": {Data: []byte(`{"revenue":"Revenue"}`)},
	})

	data, err := src.FetchData(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, data.DashboardSections, 1)
	assert.Equal(t, "Tech", data.DashboardSections[0].Data()[0]["sector"])

	layout, err := src.FetchLayout(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, layout.Tabs, 1)

	aliases, err := src.FetchColumnAliases(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Revenue", aliases.Label("revenue"))
}

func TestFileSourceMissingFiles(t *testing.T) {
	src := NewFSSource(fstest.MapFS{})

	_, err := src.FetchData(context.Background(), "acme")
	require.Error(t, err)

	_, err = src.FetchLayout(context.Background(), "acme")
	assert.True(t, errors.Is(err, dashboard.ErrLayoutNotFound))

	aliases, err := src.FetchColumnAliases(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestFileSourceBrokenDocument(t *testing.T) {
	src := NewFSSource(fstest.MapFS{"data/acme-injected.json": {Data: []byte(`{"dashboardSections": [`)}})
	_, err := src.FetchData(context.Background(), "acme")
	require.Error(t, err)
}

func TestFileSourceHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource(t.TempDir()).FetchData(ctx, "acme")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockSource(t *testing.T) {
	layout := &dashboard.LayoutManifest{Tabs: []dashboard.LayoutTab{{ID: "x"}}}
	src := NewMockSource(map[string]Fixture{
		"acme": {Layout: layout, Aliases: dashboard.ColumnAliases{"a": "A"}},
	})
	_, err := src.FetchData(context.Background(), "acme")
	require.NoError(t, err)
	got, err := src.FetchLayout(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Tabs[0].ID)

	_, err = src.FetchLayout(context.Background(), "globex")
	assert.ErrorIs(t, err, dashboard.ErrLayoutNotFound)
	_, err = src.FetchData(context.Background(), "globex")
	require.Error(t, err)

	src.Set("slow", Fixture{Delay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = src.FetchData(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: community-pack
kinds:
  - definition:
      code: GaugeChart
      name: Gauge
      description: Single value against a target.
      capabilities: [data]
      schema:
        type: object
        properties:
          target:
            type: number
    source:
      package: "@community/gauge"
      docs_url: https://example.com/kinds/gauge
    tags: [chart]
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Kinds, 1)

	kind := doc.Kinds[0]
	assert.Equal(t, "GaugeChart", kind.Definition.Code)
	assert.Equal(t, "Gauge", kind.Definition.Name)
	assert.True(t, kind.Definition.Has(CapabilityData))
	assert.Equal(t, "@community/gauge", kind.Source.Package)
	assert.Equal(t, []string{"chart"}, kind.Tags)
}

func TestDecodeManifestDefaults(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader("kinds:\n  - definition:\n      code: Plain\n"))
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, doc.Version)
	assert.Equal(t, "Plain", doc.Kinds[0].Definition.Name)
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc := &KindManifestDocument{
		Version: manifestVersionV1,
		Kinds: []ManifestKind{
			{
				Definition: KindDefinition{
					Code:         "SideFilters",
					Name:         "Side filters",
					Capabilities: []Capability{CapabilityFilterPanel},
				},
				Source: ManifestSourceInfo{Package: "@acme/filters", Channel: "stable"},
			},
		},
	}
	reg := NewRegistry()

	require.NoError(t, reg.LoadManifestDocument(doc))

	def, ok := reg.Kind("sidefilters")
	require.True(t, ok)
	assert.Equal(t, "Side filters", def.Name)
	assert.True(t, hasCapability(reg, WidgetDescriptor{BlockKind: "SideFilters"}, CapabilityFilterPanel))

	meta, ok := reg.ManifestInfo("SideFilters")
	require.True(t, ok)
	assert.Equal(t, "@acme/filters", meta.Package)
}

func TestManifestDuplicateCodes(t *testing.T) {
	const payload = `
kinds:
  - definition:
      code: Dup
  - definition:
      code: dup
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates kind code")
}

func TestManifestRejectsUnknownFieldsAndCapabilities(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("kinds:\n  - definition:\n      code: X\n    provider: {}\n"))
	require.Error(t, err)

	_, err = DecodeManifest(strings.NewReader("kinds:\n  - definition:\n      code: X\n      capabilities: [render]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown capability")

	_, err = DecodeManifest(strings.NewReader(""))
	require.Error(t, err)

	_, err = DecodeManifest(strings.NewReader("version: 2\nkinds: []\n"))
	require.Error(t, err)
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	codes := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		for _, kind := range doc.Kinds {
			if prev, exists := codes[kind.Definition.Code]; exists {
				t.Fatalf("kind code %s defined in both %s and %s", kind.Definition.Code, prev, path)
			}
			codes[kind.Definition.Code] = path
		}
	}
}

func TestDecodeDataManifest(t *testing.T) {
	const payload = `{
  "dashboardSections": [
    {"id": "filters", "blockKind": "DynamicFilterPanel"},
    {"id": "table", "blockKind": "DataTable", "settings": {"data": [{"sector": "Tech", "revenue": 10}]}}
  ]
}`
	doc, err := DecodeDataManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.DashboardSections, 2)
	records := doc.DashboardSections[1].Data()
	require.Len(t, records, 1)
	assert.Equal(t, "Tech", records[0]["sector"])

	_, err = DecodeDataManifest(strings.NewReader(""))
	require.Error(t, err)
}

func TestDecodeLayoutAndAliases(t *testing.T) {
	layout, err := DecodeLayoutManifest(strings.NewReader(`{"columns": 2, "tabs": [{"id": "a", "sections": ["x"], "filter": {"region": "EU"}}]}`))
	require.NoError(t, err)
	require.Len(t, layout.Tabs, 1)
	assert.Equal(t, []string{"x"}, layout.Tabs[0].Sections)
	assert.Equal(t, "EU", layout.Tabs[0].Filter["region"])

	empty, err := DecodeLayoutManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Tabs)

	aliases, err := DecodeColumnAliases(strings.NewReader(`{"rev": "Revenue"}`))
	require.NoError(t, err)
	assert.Equal(t, "Revenue", aliases.Label("rev"))

	_, err = DecodeColumnAliases(strings.NewReader(`[1, 2]`))
	require.Error(t, err)
}

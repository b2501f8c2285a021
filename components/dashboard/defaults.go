package dashboard

const (
	// KindFilterPanel is the sentinel kind that enables filter controls.
	KindFilterPanel = "DynamicFilterPanel"
	// KindTabbedContainer groups content into tabs via settings.tabs.
	KindTabbedContainer = "TabbedContainer"
)

// DefaultKindDefinitions returns the widget kinds every registry knows.
func DefaultKindDefinitions() []KindDefinition {
	return []KindDefinition{
		{
			Code:         KindFilterPanel,
			Name:         "Dynamic filter panel",
			Description:  "Renders filter controls derived from the tab's records.",
			Capabilities: []Capability{CapabilityFilterPanel},
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hidden":     stringListSchema(),
					"hideSingle": map[string]any{"type": "boolean"},
				},
			},
		},
		{
			Code:         KindTabbedContainer,
			Name:         "Tabbed container",
			Description:  "Splits content into tabs with their own required filters.",
			Capabilities: []Capability{CapabilityContainer},
			Schema: map[string]any{
				"type":     "object",
				"required": []any{"tabs"},
				"properties": map[string]any{
					"tabs": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":      map[string]any{"type": []any{"string", "number"}},
								"label":   map[string]any{"type": "string"},
								"content": map[string]any{"type": "array"},
								"filter":  scalarMapSchema(),
							},
						},
					},
				},
			},
		},
		dataKind("DataTable", "Data table", "Tabular view of the visible records."),
		dataKind("BarChart", "Bar chart", "Bar chart over the visible records."),
		dataKind("LineChart", "Line chart", "Line chart over the visible records."),
		dataKind("PieChart", "Pie chart", "Pie chart over the visible records."),
		dataKind("KPIBlock", "KPI block", "Aggregated headline numbers."),
		{
			Code:        "TextBlock",
			Name:        "Text block",
			Description: "Static narrative text.",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
				},
			},
		},
	}
}

func dataKind(code, name, description string) KindDefinition {
	return KindDefinition{
		Code:         code,
		Name:         name,
		Description:  description,
		Capabilities: []Capability{CapabilityData},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "object"},
				},
				"filter": scalarMapSchema(),
			},
		},
	}
}

func scalarMapSchema() map[string]any {
	scalar := map[string]any{"type": []any{"string", "number", "boolean"}}
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"anyOf": []any{
				scalar,
				map[string]any{"type": "array", "items": scalar},
			},
		},
	}
}

func stringListSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

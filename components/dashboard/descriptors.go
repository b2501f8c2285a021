package dashboard

import "fmt"

// Data returns the records declared under settings.data. Entries that are
// not objects are skipped.
func (d WidgetDescriptor) Data() []Record {
	raw, ok := d.Settings["data"].([]any)
	if !ok {
		if typed, ok := d.Settings["data"].([]Record); ok {
			return typed
		}
		if typed, ok := d.Settings["data"].([]map[string]any); ok {
			out := make([]Record, len(typed))
			for i, m := range typed {
				out[i] = Record(m)
			}
			return out
		}
		return nil
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		switch m := item.(type) {
		case map[string]any:
			records = append(records, Record(m))
		case Record:
			records = append(records, m)
		}
	}
	return records
}

// Filter returns settings.filter as a required-filter map.
func (d WidgetDescriptor) Filter() map[string]any {
	return asMap(d.Settings["filter"])
}

func (d WidgetDescriptor) filterPanelSettings() FilterPanelSettings {
	settings := FilterPanelSettings{}
	switch hidden := d.Settings["hidden"].(type) {
	case []string:
		settings.Hidden = append(settings.Hidden, hidden...)
	case []any:
		for _, item := range hidden {
			if name := stringValue(item); name != "" {
				settings.Hidden = append(settings.Hidden, name)
			}
		}
	}
	settings.HideSingle, _ = d.Settings["hideSingle"].(bool)
	return settings
}

// tabSpec is one entry of a TabbedContainer's settings.tabs.
type tabSpec struct {
	ID      string
	Label   string
	Content []WidgetDescriptor
	Filter  map[string]any
}

// tabSpecs decodes settings.tabs. Each entry may carry its required filter
// either as `filter` or as `settings.filter`.
func (d WidgetDescriptor) tabSpecs() []tabSpec {
	raw, ok := d.Settings["tabs"].([]any)
	if !ok {
		return nil
	}
	specs := make([]tabSpec, 0, len(raw))
	for idx, item := range raw {
		m := asMap(item)
		if m == nil {
			continue
		}
		spec := tabSpec{
			ID:    stringValue(m["id"]),
			Label: stringValue(m["label"]),
		}
		if spec.ID == "" {
			spec.ID = fmt.Sprintf("%s-tab-%d", d.ID, idx)
		}
		if spec.Label == "" {
			spec.Label = spec.ID
		}
		if content, ok := m["content"].([]any); ok {
			for cidx, c := range content {
				if desc, ok := descriptorFromMap(asMap(c)); ok {
					if desc.ID == "" {
						desc.ID = fmt.Sprintf("%s-%d", spec.ID, cidx)
					}
					spec.Content = append(spec.Content, desc)
				}
			}
		}
		spec.Filter = asMap(m["filter"])
		if spec.Filter == nil {
			spec.Filter = asMap(asMap(m["settings"])["filter"])
		}
		specs = append(specs, spec)
	}
	return specs
}

func descriptorFromMap(m map[string]any) (WidgetDescriptor, bool) {
	if m == nil {
		return WidgetDescriptor{}, false
	}
	kind := stringValue(m["blockKind"])
	if kind == "" {
		return WidgetDescriptor{}, false
	}
	return WidgetDescriptor{
		ID:        stringValue(m["id"]),
		BlockKind: kind,
		Title:     stringValue(m["title"]),
		Settings:  asMap(m["settings"]),
	}, true
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Record:
		return map[string]any(m)
	}
	return nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if key, ok := ValueKey(v); ok {
		return key
	}
	return ""
}

func cloneFilter(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

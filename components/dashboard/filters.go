package dashboard

import (
	"cmp"
	"slices"
)

type derivedOption struct {
	key     string
	value   any
	num     float64
	numeric bool
}

// DeriveFilters computes one dimension per attribute observed on at least one
// record, listing the distinct values seen. Dimensions are ordered by attribute
// name. Options sort numerically when every option of the dimension is
// numeric-looking, lexicographically by value key otherwise.
func DeriveFilters(records []Record) []FilterDimension {
	return DeriveFiltersWithLabels(records, nil)
}

// DeriveFiltersWithLabels is DeriveFilters with labels resolved from aliases.
func DeriveFiltersWithLabels(records []Record, aliases ColumnAliases) []FilterDimension {
	seen := map[string]map[string]derivedOption{}
	for _, rec := range records {
		for attr, value := range rec {
			key, ok := ValueKey(value)
			if !ok {
				continue
			}
			options, exists := seen[attr]
			if !exists {
				options = map[string]derivedOption{}
				seen[attr] = options
			}
			if _, dup := options[key]; dup {
				continue
			}
			num, numeric := numericValue(value)
			options[key] = derivedOption{key: key, value: value, num: num, numeric: numeric}
		}
	}

	attrs := make([]string, 0, len(seen))
	for attr := range seen {
		attrs = append(attrs, attr)
	}
	slices.Sort(attrs)

	dims := make([]FilterDimension, 0, len(attrs))
	for _, attr := range attrs {
		dims = append(dims, FilterDimension{
			Type:    attr,
			Label:   aliases.Label(attr),
			Options: sortOptions(seen[attr]),
		})
	}
	return dims
}

func sortOptions(options map[string]derivedOption) []any {
	list := make([]derivedOption, 0, len(options))
	allNumeric := true
	for _, opt := range options {
		list = append(list, opt)
		allNumeric = allNumeric && opt.numeric
	}
	slices.SortFunc(list, func(a, b derivedOption) int {
		if allNumeric {
			if c := cmp.Compare(a.num, b.num); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.key, b.key)
	})
	values := make([]any, len(list))
	for i, opt := range list {
		values[i] = opt.value
	}
	return values
}

// optionKeys indexes the option keys of each dimension.
func optionKeys(dims []FilterDimension) map[string]ValueSet {
	index := make(map[string]ValueSet, len(dims))
	for _, dim := range dims {
		set := make(ValueSet, len(dim.Options))
		for _, opt := range dim.Options {
			if key, ok := ValueKey(opt); ok {
				set[key] = struct{}{}
			}
		}
		index[dim.Type] = set
	}
	return index
}

// Visible drops the dimensions the panel hides: those named in Hidden and,
// with HideSingle, those offering fewer than two options. A nil panel hides
// nothing.
func (p *FilterPanelSettings) Visible(dims []FilterDimension) []FilterDimension {
	if p == nil || (len(p.Hidden) == 0 && !p.HideSingle) {
		return dims
	}
	out := make([]FilterDimension, 0, len(dims))
	for _, dim := range dims {
		if slices.Contains(p.Hidden, dim.Type) {
			continue
		}
		if p.HideSingle && len(dim.Options) < 2 {
			continue
		}
		out = append(out, dim)
	}
	return out
}

func cloneDimensions(dims []FilterDimension) []FilterDimension {
	out := make([]FilterDimension, len(dims))
	for i, dim := range dims {
		out[i] = FilterDimension{
			Type:    dim.Type,
			Label:   dim.Label,
			Options: slices.Clone(dim.Options),
		}
	}
	return out
}

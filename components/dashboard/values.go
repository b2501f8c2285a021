package dashboard

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKey returns the canonical string form of a scalar attribute value.
// The second return is false for nil and non-scalar values, which are treated
// as absent everywhere in this package.
func ValueKey(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.FormatInt(int64(t), 10), true
	case int8:
		return strconv.FormatInt(int64(t), 10), true
	case int16:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint8:
		return strconv.FormatUint(uint64(t), 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return t.String(), true
	default:
		return "", false
	}
}

// numericValue reports the float form of numbers and numeric-looking strings.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	key, ok := ValueKey(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(key, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ValueSet is a set of canonical value keys.
type ValueSet map[string]struct{}

// Has reports whether the value's key is in the set.
func (s ValueSet) Has(v any) bool {
	key, ok := ValueKey(v)
	if !ok {
		return false
	}
	_, found := s[key]
	return found
}

// Keys returns the set members in sorted order.
func (s ValueSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// MarshalJSON encodes the set as a sorted list of keys.
func (s ValueSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON accepts a list of scalar values.
func (s *ValueSet) UnmarshalJSON(data []byte) error {
	var values []any
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	set := make(ValueSet, len(values))
	for _, v := range values {
		if key, ok := ValueKey(v); ok {
			set[key] = struct{}{}
		}
	}
	*s = set
	return nil
}

// FilterSelection maps a dimension to its selected values. A missing or empty
// set imposes no restriction on that dimension.
type FilterSelection map[string]ValueSet

// Clone deep copies the selection, dropping empty sets.
func (s FilterSelection) Clone() FilterSelection {
	out := make(FilterSelection, len(s))
	for dim, set := range s {
		if len(set) == 0 {
			continue
		}
		cp := make(ValueSet, len(set))
		for key := range set {
			cp[key] = struct{}{}
		}
		out[dim] = cp
	}
	return out
}

// IsEmpty reports whether no dimension is constrained.
func (s FilterSelection) IsEmpty() bool {
	for _, set := range s {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// Matches reports whether the record passes every non-empty dimension.
func (s FilterSelection) Matches(rec Record) bool {
	for dim, set := range s {
		if len(set) == 0 {
			continue
		}
		if !set.Has(rec[dim]) {
			return false
		}
	}
	return true
}

// fingerprint is a stable textual form used to detect selection changes.
func (s FilterSelection) fingerprint() string {
	dims := make([]string, 0, len(s))
	for dim, set := range s {
		if len(set) > 0 {
			dims = append(dims, dim)
		}
	}
	slices.Sort(dims)
	var b strings.Builder
	for _, dim := range dims {
		b.WriteString(strconv.Quote(dim))
		b.WriteByte('=')
		for _, key := range s[dim].Keys() {
			b.WriteString(strconv.Quote(key))
			b.WriteByte(',')
		}
		b.WriteByte(';')
	}
	return b.String()
}

// MatchesRequired reports whether the record satisfies a tab's required
// filters. A required value may be a scalar or a list of accepted scalars.
func MatchesRequired(rec Record, required map[string]any) bool {
	for attr, want := range required {
		got, ok := ValueKey(rec[attr])
		if !ok {
			return false
		}
		if !requiredAccepts(want, got) {
			return false
		}
	}
	return true
}

func requiredAccepts(want any, got string) bool {
	switch t := want.(type) {
	case []any:
		for _, item := range t {
			if key, ok := ValueKey(item); ok && key == got {
				return true
			}
		}
		return false
	case []string:
		return slices.Contains(t, got)
	}
	key, ok := ValueKey(want)
	return ok && key == got
}

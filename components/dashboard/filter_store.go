package dashboard

import (
	"slices"
	"sync"
)

// FilterStore keeps an independent FilterSelection per tab id. There is no
// shared or default selection; unknown tabs and dimensions are created on
// demand and no method returns an error.
type FilterStore struct {
	mu   sync.RWMutex
	tabs map[string]FilterSelection
}

// NewFilterStore creates an empty store.
func NewFilterStore() *FilterStore {
	return &FilterStore{
		tabs: make(map[string]FilterSelection),
	}
}

// Selection returns a copy of the tab's selection. Unseen tabs yield an empty selection.
func (s *FilterStore) Selection(tabID string) FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tabs[tabID].Clone()
}

// State returns the tab's selection wrapped as a TabState.
func (s *FilterStore) State(tabID string) TabState {
	return TabState{TabID: tabID, Selection: s.Selection(tabID)}
}

// Ensure creates empty state for the tab if it has none yet.
func (s *FilterStore) Ensure(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(tabID)
}

// Toggle adds value to the dimension's selected set, or removes it when
// already present. It reports whether the value is selected afterwards.
// Non-scalar values are ignored.
func (s *FilterStore) Toggle(tabID, dimension string, value any) bool {
	key, ok := ValueKey(value)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.ensure(tabID)
	set := sel[dimension]
	if _, present := set[key]; present {
		delete(set, key)
		if len(set) == 0 {
			delete(sel, dimension)
		}
		return false
	}
	if set == nil {
		set = ValueSet{}
		sel[dimension] = set
	}
	set[key] = struct{}{}
	return true
}

// ClearDimension removes every selected value of one dimension.
func (s *FilterStore) ClearDimension(tabID, dimension string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ensure(tabID), dimension)
}

// ClearAll resets the tab to an empty selection.
func (s *FilterStore) ClearAll(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[tabID] = FilterSelection{}
}

// Prune drops selected values that are no longer options of the tab's
// dimensions. It reports whether anything was removed.
func (s *FilterStore) Prune(tabID string, dims []FilterDimension) bool {
	valid := optionKeys(dims)
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.tabs[tabID]
	if !ok {
		return false
	}
	changed := false
	for dim, set := range sel {
		options, known := valid[dim]
		for key := range set {
			if _, keep := options[key]; known && keep {
				continue
			}
			delete(set, key)
			changed = true
		}
		if len(set) == 0 {
			delete(sel, dim)
		}
	}
	return changed
}

// Retain drops state for every tab not listed.
func (s *FilterStore) Retain(tabIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.tabs {
		if !slices.Contains(tabIDs, id) {
			delete(s.tabs, id)
		}
	}
}

// Reset drops all tab state.
func (s *FilterStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = make(map[string]FilterSelection)
}

// Tabs lists the tab ids holding state, sorted.
func (s *FilterStore) Tabs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tabs))
	for id := range s.tabs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *FilterStore) ensure(tabID string) FilterSelection {
	sel, ok := s.tabs[tabID]
	if !ok {
		sel = FilterSelection{}
		s.tabs[tabID] = sel
	}
	return sel
}

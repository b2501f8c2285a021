package dashboard

import (
	"testing"
)

func TestFilterStoreToggleTwiceRestoresState(t *testing.T) {
	store := NewFilterStore()
	before := store.Selection("overview")

	if !store.Toggle("overview", "sector", "Healthcare") {
		t.Fatalf("expected first toggle to select the value")
	}
	if store.Toggle("overview", "sector", "Healthcare") {
		t.Fatalf("expected second toggle to deselect the value")
	}
	after := store.Selection("overview")
	if len(before) != 0 || len(after) != 0 {
		t.Fatalf("expected empty selection after double toggle, got %v", after)
	}
	if _, ok := after["sector"]; ok {
		t.Fatalf("expected dimension key removed once its set is empty")
	}
}

func TestFilterStoreTabsAreIndependent(t *testing.T) {
	store := NewFilterStore()
	store.Toggle("a", "region", "EU")
	store.Toggle("b", "region", "US")

	if sel := store.Selection("a"); !sel["region"].Has("EU") || sel["region"].Has("US") {
		t.Fatalf("tab a leaked state: %v", sel)
	}
	if sel := store.Selection("b"); !sel["region"].Has("US") || sel["region"].Has("EU") {
		t.Fatalf("tab b leaked state: %v", sel)
	}
	store.ClearAll("a")
	if !store.Selection("a").IsEmpty() {
		t.Fatalf("expected tab a cleared")
	}
	if store.Selection("b").IsEmpty() {
		t.Fatalf("expected tab b untouched by clearing a")
	}
}

func TestFilterStoreUnknownTabIsCreatedOnDemand(t *testing.T) {
	store := NewFilterStore()
	if sel := store.Selection("missing"); len(sel) != 0 {
		t.Fatalf("expected empty selection for unseen tab, got %v", sel)
	}
	store.ClearDimension("missing", "sector")
	if tabs := store.Tabs(); len(tabs) != 1 || tabs[0] != "missing" {
		t.Fatalf("expected tab created by ClearDimension, got %v", tabs)
	}
}

func TestFilterStoreCanonicalisesScalars(t *testing.T) {
	store := NewFilterStore()
	store.Toggle("t", "year", 2024)
	if store.Toggle("t", "year", "2024") {
		t.Fatalf("expected string form to toggle the numeric value off")
	}
	if store.Toggle("t", "tags", []any{"x"}) {
		t.Fatalf("expected non-scalar value to be ignored")
	}
	if !store.Selection("t").IsEmpty() {
		t.Fatalf("expected empty selection, got %v", store.Selection("t"))
	}
}

func TestFilterStoreSelectionIsACopy(t *testing.T) {
	store := NewFilterStore()
	store.Toggle("t", "sector", "Tech")
	sel := store.Selection("t")
	sel["sector"]["Healthcare"] = struct{}{}
	if store.Selection("t")["sector"].Has("Healthcare") {
		t.Fatalf("expected Selection to return a defensive copy")
	}
}

func TestFilterStorePruneAndRetain(t *testing.T) {
	store := NewFilterStore()
	store.Toggle("t", "sector", "Tech")
	store.Toggle("t", "sector", "Mining")
	store.Toggle("t", "region", "EU")
	store.Toggle("gone", "sector", "Tech")

	dims := []FilterDimension{{Type: "sector", Options: []any{"Tech", "Healthcare"}}}
	if !store.Prune("t", dims) {
		t.Fatalf("expected prune to report removal")
	}
	sel := store.Selection("t")
	if !sel["sector"].Has("Tech") || sel["sector"].Has("Mining") {
		t.Fatalf("unexpected pruned sector set: %v", sel["sector"])
	}
	if _, ok := sel["region"]; ok {
		t.Fatalf("expected unknown dimension dropped, got %v", sel)
	}
	if store.Prune("t", dims) {
		t.Fatalf("expected second prune to be a no-op")
	}

	store.Retain([]string{"t"})
	if tabs := store.Tabs(); len(tabs) != 1 || tabs[0] != "t" {
		t.Fatalf("expected only retained tab, got %v", tabs)
	}
	store.Reset()
	if tabs := store.Tabs(); len(tabs) != 0 {
		t.Fatalf("expected reset store, got %v", tabs)
	}
}

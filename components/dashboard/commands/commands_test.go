package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

func TestSelectTabCommand(t *testing.T) {
	coord := &stubCoordinator{}
	telemetry := &stubTelemetry{}
	cmd := NewSelectTabCommand(coord, telemetry)
	if err := cmd.Execute(context.Background(), SelectTabInput{TabID: "europe"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if coord.selected != "europe" {
		t.Fatalf("expected europe selected, got %q", coord.selected)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
	if err := cmd.Execute(context.Background(), SelectTabInput{}); err == nil {
		t.Fatalf("expected error for missing tab id")
	}
}

func TestSelectTabCommandPropagatesUnknownTab(t *testing.T) {
	coord := &stubCoordinator{selectErr: dashboard.ErrUnknownTab}
	cmd := NewSelectTabCommand(coord, nil)
	err := cmd.Execute(context.Background(), SelectTabInput{TabID: "nope"})
	if !errors.Is(err, dashboard.ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}
}

func TestSelectTabCommandAgainstCoordinator(t *testing.T) {
	ctx := context.Background()
	coord := dashboard.NewCoordinator(dashboard.CoordinatorOptions{})
	coord.Install(ctx, dashboard.TabCollection{
		Project: "acme",
		Tabs:    []dashboard.Tab{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
	})
	if err := NewSelectTabCommand(coord, nil).Execute(ctx, SelectTabInput{TabID: "b"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if coord.ActiveTab() != "b" {
		t.Fatalf("expected tab b active, got %q", coord.ActiveTab())
	}
}

func TestToggleFilterCommand(t *testing.T) {
	coord := &stubCoordinator{}
	cmd := NewToggleFilterCommand(coord, nil)
	if err := cmd.Execute(context.Background(), ToggleFilterInput{TabID: "a", Dimension: "sector", Value: "Tech"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if coord.toggleCalls != 1 {
		t.Fatalf("expected toggle call")
	}
	if err := cmd.Execute(context.Background(), ToggleFilterInput{TabID: "a", Dimension: "sector"}); err == nil {
		t.Fatalf("expected error for missing value")
	}
	if err := cmd.Execute(context.Background(), ToggleFilterInput{Dimension: "sector", Value: 1}); err == nil {
		t.Fatalf("expected error for missing tab")
	}
}

func TestClearCommands(t *testing.T) {
	coord := &stubCoordinator{}
	if err := NewClearDimensionCommand(coord, nil).Execute(context.Background(), ClearDimensionInput{TabID: "a", Dimension: "sector"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := NewClearFiltersCommand(coord, nil).Execute(context.Background(), ClearFiltersInput{TabID: "a"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if coord.clearDimCalls != 1 || coord.clearAllCalls != 1 {
		t.Fatalf("expected one call each, got %d/%d", coord.clearDimCalls, coord.clearAllCalls)
	}
	if err := NewClearFiltersCommand(nil, nil).Execute(context.Background(), ClearFiltersInput{TabID: "a"}); err == nil {
		t.Fatalf("expected error without coordinator")
	}
}

func TestLoadDashboardCommand(t *testing.T) {
	loader := &stubLoader{}
	telemetry := &stubTelemetry{}
	cmd := NewLoadDashboardCommand(loader, telemetry)
	if err := cmd.Execute(context.Background(), LoadDashboardInput{Project: "acme"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if loader.calls != 1 || telemetry.calls != 1 {
		t.Fatalf("expected load and telemetry, got %d/%d", loader.calls, telemetry.calls)
	}
}

func TestLoadDashboardCommandSwallowsSuperseded(t *testing.T) {
	loader := &stubLoader{err: dashboard.ErrSuperseded}
	if err := NewLoadDashboardCommand(loader, nil).Execute(context.Background(), LoadDashboardInput{Project: "acme"}); err != nil {
		t.Fatalf("expected superseded load to be ignored, got %v", err)
	}
	loader.err = &dashboard.LoadError{Project: "acme", Err: errors.New("down")}
	err := NewLoadDashboardCommand(loader, nil).Execute(context.Background(), LoadDashboardInput{Project: "acme"})
	if !errors.Is(err, dashboard.ErrDashboardLoad) {
		t.Fatalf("expected ErrDashboardLoad, got %v", err)
	}
}

type stubCoordinator struct {
	selected      string
	selectErr     error
	toggleCalls   int
	clearDimCalls int
	clearAllCalls int
}

func (s *stubCoordinator) SelectTab(_ context.Context, tabID string) error {
	if s.selectErr != nil {
		return s.selectErr
	}
	s.selected = tabID
	return nil
}

func (s *stubCoordinator) Toggle(context.Context, string, string, any) bool {
	s.toggleCalls++
	return true
}

func (s *stubCoordinator) ClearDimension(context.Context, string, string) {
	s.clearDimCalls++
}

func (s *stubCoordinator) ClearAll(context.Context, string) {
	s.clearAllCalls++
}

type stubLoader struct {
	calls int
	err   error
}

func (s *stubLoader) Load(_ context.Context, project string) (dashboard.TabCollection, error) {
	s.calls++
	if s.err != nil {
		return dashboard.TabCollection{}, s.err
	}
	return dashboard.TabCollection{Project: project, Generation: uint64(s.calls)}, nil
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

package manifests

import (
	"context"
	"fmt"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// Fixture holds the documents of one project.
type Fixture struct {
	Data    dashboard.DataManifest
	Layout  *dashboard.LayoutManifest
	Aliases dashboard.ColumnAliases
	// Delay is applied before the data manifest resolves.
	Delay time.Duration
}

// MockSource serves fixtures from memory for tests and local demos.
type MockSource struct {
	mu       sync.RWMutex
	fixtures map[string]Fixture
}

var _ dashboard.ManifestSource = (*MockSource)(nil)

// NewMockSource builds a source from per-project fixtures.
func NewMockSource(fixtures map[string]Fixture) *MockSource {
	src := &MockSource{fixtures: map[string]Fixture{}}
	for project, fx := range fixtures {
		src.fixtures[project] = fx
	}
	return src
}

// Set replaces the fixture for a project.
func (s *MockSource) Set(project string, fx Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[project] = fx
}

// FetchData returns the project's data manifest after its delay.
func (s *MockSource) FetchData(ctx context.Context, project string) (dashboard.DataManifest, error) {
	fx, err := s.fixture(project)
	if err != nil {
		return dashboard.DataManifest{}, err
	}
	if fx.Delay > 0 {
		timer := time.NewTimer(fx.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return dashboard.DataManifest{}, ctx.Err()
		}
	}
	return fx.Data, nil
}

// FetchLayout returns the fixture layout or dashboard.ErrLayoutNotFound.
func (s *MockSource) FetchLayout(_ context.Context, project string) (dashboard.LayoutManifest, error) {
	fx, err := s.fixture(project)
	if err != nil || fx.Layout == nil {
		return dashboard.LayoutManifest{}, dashboard.ErrLayoutNotFound
	}
	return *fx.Layout, nil
}

// FetchColumnAliases returns the fixture aliases.
func (s *MockSource) FetchColumnAliases(_ context.Context, project string) (dashboard.ColumnAliases, error) {
	fx, err := s.fixture(project)
	if err != nil {
		return nil, err
	}
	return fx.Aliases, nil
}

func (s *MockSource) fixture(project string) (Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fx, ok := s.fixtures[project]
	if !ok {
		return Fixture{}, fmt.Errorf("manifests: unknown project %q", project)
	}
	return fx, nil
}

package dashboard

import (
	core "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// Orchestrator exposes the underlying components/dashboard.Orchestrator type.
type Orchestrator = core.Orchestrator

// Options re-export for convenience.
type Options = core.Options

// Coordinator exposes the tab coordinator.
type Coordinator = core.Coordinator

// CoordinatorOptions re-export for convenience.
type CoordinatorOptions = core.CoordinatorOptions

// NewOrchestrator proxies to the internal constructor.
func NewOrchestrator(opts Options) *Orchestrator {
	return core.NewOrchestrator(opts)
}

// NewCoordinator proxies to the internal constructor.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	return core.NewCoordinator(opts)
}

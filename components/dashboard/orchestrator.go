package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrDashboardLoad marks failures that leave the dashboard unrenderable.
	ErrDashboardLoad = errors.New("dashboard: failed to load dashboard")
	// ErrLayoutNotFound is returned by sources when a project has no custom layout.
	ErrLayoutNotFound = errors.New("dashboard: layout not found")
	// ErrSuperseded is returned when a newer Load started before this one resolved.
	ErrSuperseded = errors.New("dashboard: load superseded by a newer request")

	errMissingSource  = errors.New("dashboard: manifest source not configured")
	errInvalidProject = errors.New("dashboard: project is required")
)

// LoadError wraps the cause of a fatal data manifest failure.
type LoadError struct {
	Project string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dashboard: load %s: %v", e.Project, e.Err)
}

// Unwrap exposes both ErrDashboardLoad and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrDashboardLoad, e.Err}
}

// Options configures the Orchestrator. Every collaborator is an interface so
// applications can swap implementations.
type Options struct {
	Source      ManifestSource
	Coordinator *Coordinator
	Kinds       KindRegistry
	Validator   SettingsValidator
	Telemetry   Telemetry
	AliasCache  *AliasCache
}

// Orchestrator loads manifests, merges them into a TabCollection and installs
// it on the coordinator.
type Orchestrator struct {
	opts       Options
	generation atomic.Uint64
	applyMu    sync.Mutex
	applied    uint64
}

// NewOrchestrator builds an Orchestrator with safe defaults.
func NewOrchestrator(opts Options) *Orchestrator {
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Coordinator == nil {
		opts.Coordinator = NewCoordinator(CoordinatorOptions{Telemetry: opts.Telemetry})
	}
	if opts.Kinds == nil {
		opts.Kinds = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	return &Orchestrator{opts: opts}
}

// Coordinator exposes the coordinator the orchestrator installs collections on.
func (o *Orchestrator) Coordinator() *Coordinator {
	return o.opts.Coordinator
}

// Load fetches the project's data manifest, layout and column aliases, builds
// the tab collection and installs it. A missing or broken layout degrades to
// the default layout and missing aliases to raw names; only a data manifest
// failure is fatal. When a newer Load started meanwhile the result is
// discarded and ErrSuperseded returned.
func (o *Orchestrator) Load(ctx context.Context, project string) (TabCollection, error) {
	if o.opts.Source == nil {
		return TabCollection{}, errMissingSource
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return TabCollection{}, errInvalidProject
	}
	gen := o.generation.Add(1)

	var (
		data    DataManifest
		layout  *LayoutManifest
		aliases ColumnAliases
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := o.opts.Source.FetchData(gctx, project)
		if err != nil {
			return &LoadError{Project: project, Err: err}
		}
		data = doc
		return nil
	})
	g.Go(func() error {
		layout = o.fetchLayout(gctx, project)
		return nil
	})
	g.Go(func() error {
		aliases = o.fetchAliases(gctx, project)
		return nil
	})
	if err := g.Wait(); err != nil {
		o.recordTelemetry(ctx, "dashboard.load.error", map[string]any{
			"project":    project,
			"generation": gen,
			"error":      err.Error(),
		})
		if o.generation.Load() != gen {
			return TabCollection{}, ErrSuperseded
		}
		return TabCollection{}, err
	}

	col := o.BuildCollection(ctx, project, data, layout, aliases)
	col.Generation = gen

	o.applyMu.Lock()
	if gen != o.generation.Load() || gen < o.applied {
		o.applyMu.Unlock()
		o.recordTelemetry(ctx, "dashboard.load.superseded", map[string]any{
			"project":    project,
			"generation": gen,
		})
		return TabCollection{}, ErrSuperseded
	}
	o.applied = gen
	o.opts.Coordinator.Install(ctx, col)
	o.applyMu.Unlock()

	o.recordTelemetry(ctx, "dashboard.load", map[string]any{
		"project":      project,
		"generation":   gen,
		"tabs":         len(col.Tabs),
		"layout":       string(col.Layout),
		"filter_panel": col.FilterPanelEnabled,
	})
	return col, nil
}

func (o *Orchestrator) fetchLayout(ctx context.Context, project string) *LayoutManifest {
	doc, err := o.opts.Source.FetchLayout(ctx, project)
	if err == nil {
		return &doc
	}
	if !errors.Is(err, ErrLayoutNotFound) {
		o.recordTelemetry(ctx, "dashboard.layout.fallback", map[string]any{
			"project": project,
			"error":   err.Error(),
		})
	}
	return nil
}

func (o *Orchestrator) fetchAliases(ctx context.Context, project string) ColumnAliases {
	aliases, err := o.opts.AliasCache.GetOrFetch(project, func() (ColumnAliases, error) {
		return o.opts.Source.FetchColumnAliases(ctx, project)
	})
	if err != nil {
		o.recordTelemetry(ctx, "dashboard.aliases.fallback", map[string]any{
			"project": project,
			"error":   err.Error(),
		})
		return ColumnAliases{}
	}
	if aliases == nil {
		return ColumnAliases{}
	}
	return aliases
}

func (o *Orchestrator) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	o.opts.Telemetry.Record(ctx, event, payload)
}

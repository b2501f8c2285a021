package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Capability flags what the coordinator needs to know about a widget kind.
type Capability string

const (
	// CapabilityFilterPanel marks kinds that render the filter controls.
	CapabilityFilterPanel Capability = "filter_panel"
	// CapabilityContainer marks kinds whose settings.tabs declare tabs.
	CapabilityContainer Capability = "container"
	// CapabilityData marks kinds that consume settings.data records.
	CapabilityData Capability = "data"
)

// KindDefinition describes a widget kind (the descriptor's blockKind).
type KindDefinition struct {
	Code         string         `json:"code" yaml:"code"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema       map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Capabilities []Capability   `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Has reports whether the kind declares the capability.
func (d KindDefinition) Has(c Capability) bool {
	return slices.Contains(d.Capabilities, c)
}

// KindHook lets packages register widget kinds during init().
type KindHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []KindHook
)

// RegisterKindHook registers a hook executed against new registries.
func RegisterKindHook(h KindHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements KindRegistry with hook + manifest support. Kind codes
// are matched case-insensitively.
type Registry struct {
	mu           sync.RWMutex
	kinds        map[string]KindDefinition
	manifestMeta map[string]ManifestSourceInfo
}

// NewRegistry builds a registry holding the default kinds and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		kinds:        map[string]KindDefinition{},
		manifestMeta: map[string]ManifestSourceInfo{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultKindDefinitions() {
		_ = r.RegisterKind(def)
	}
}

// ApplyHooks executes registered kind hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterKind stores a kind definition, replacing any previous one.
func (r *Registry) RegisterKind(def KindDefinition) error {
	if strings.TrimSpace(def.Code) == "" {
		return fmt.Errorf("dashboard: widget kind code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kindKey(def.Code)] = def
	return nil
}

// Kind fetches a kind by code.
func (r *Registry) Kind(code string) (KindDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.kinds[kindKey(code)]
	return def, ok
}

// Kinds returns all registered kinds sorted by code.
func (r *Registry) Kinds() []KindDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]KindDefinition, 0, len(r.kinds))
	for _, def := range r.kinds {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b KindDefinition) int {
		return strings.Compare(a.Code, b.Code)
	})
	return defs
}

// ManifestInfo returns the manifest metadata recorded for a kind, if any.
func (r *Registry) ManifestInfo(code string) (ManifestSourceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[kindKey(code)]
	return meta, ok
}

func (r *Registry) recordManifestInfo(code string, meta ManifestSourceInfo) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[kindKey(code)] = meta
}

func kindKey(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// hasCapability resolves the descriptor's kind and checks a capability.
// Unknown kinds are plain data widgets.
func hasCapability(reg KindRegistry, desc WidgetDescriptor, c Capability) bool {
	if reg == nil {
		return false
	}
	def, ok := reg.Kind(desc.BlockKind)
	if !ok {
		return c == CapabilityData
	}
	return def.Has(c)
}

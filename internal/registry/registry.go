package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/render"
)

// key is the composite lookup key of a binding.
type key struct {
	format format.Format
	plugin string
}

// Binding describes one registered (format, plugin) pair.
type Binding struct {
	Format format.Format
	Plugin string

	// Fallback is true for a format-wide binding that serves any plugin
	// without a specific one.
	Fallback bool
}

// Registry maps (format, plugin) pairs to formatter factories.
// The zero value is not usable; call New.
type Registry struct {
	bindings  map[key]render.Factory
	fallbacks map[format.Format]render.Factory

	// mu serializes registration; it is never taken on the lookup path.
	mu       sync.Mutex
	sealOnce sync.Once
	sealed   atomic.Bool
}

// New returns an empty, unsealed registry.
func New() *Registry {
	return &Registry{
		bindings:  make(map[key]render.Factory),
		fallbacks: make(map[format.Format]render.Factory),
	}
}

// Register binds factory to (f, plugin). Registering the same pair again
// replaces the earlier binding, which lets callers override a built-in
// formatter.
func (r *Registry) Register(f format.Format, plugin string, factory render.Factory) error {
	if err := checkBinding(f, factory); err != nil {
		return err
	}
	if plugin == "" {
		return ErrEmptyPlugin
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return fmt.Errorf("register %s/%s: %w", f, plugin, ErrSealed)
	}
	r.bindings[key{format: f, plugin: plugin}] = factory
	return nil
}

// RegisterFallback binds factory to every plugin of format f that has no
// specific binding. Structured-data formats use it to dump any payload.
func (r *Registry) RegisterFallback(f format.Format, factory render.Factory) error {
	if err := checkBinding(f, factory); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return fmt.Errorf("register fallback %s: %w", f, ErrSealed)
	}
	r.fallbacks[f] = factory
	return nil
}

func checkBinding(f format.Format, factory render.Factory) error {
	if !f.Renderable() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
	if factory == nil {
		return ErrNilFactory
	}
	return nil
}

// Seal closes registration. It is safe to call more than once and from
// several goroutines.
func (r *Registry) Seal() {
	r.sealOnce.Do(func() {
		r.mu.Lock()
		r.sealed.Store(true)
		r.mu.Unlock()
	})
}

// Sealed reports whether registration is closed.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Resolve returns a fresh formatter for (f, plugin). The boolean is false
// when neither a specific nor a format-wide binding exists; Resolve never
// fails otherwise. The first call seals the registry.
func (r *Registry) Resolve(f format.Format, plugin string) (render.Formatter, bool) {
	r.Seal()

	if factory, ok := r.bindings[key{format: f, plugin: plugin}]; ok {
		return factory(), true
	}
	if factory, ok := r.fallbacks[f]; ok {
		return factory(), true
	}
	return nil, false
}

// Bindings lists registered pairs sorted by format, then plugin. Fallbacks
// are listed with Plugin "*".
func (r *Registry) Bindings() []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Binding, 0, len(r.bindings)+len(r.fallbacks))
	for k := range r.bindings {
		out = append(out, Binding{Format: k.format, Plugin: k.plugin})
	}
	for f := range r.fallbacks {
		out = append(out, Binding{Format: f, Plugin: "*", Fallback: true})
	}
	slices.SortFunc(out, func(a, b Binding) int {
		if c := cmp.Compare(a.Format, b.Format); c != 0 {
			return c
		}
		return cmp.Compare(a.Plugin, b.Plugin)
	})
	return out
}

// Plugins returns the plugin identities with at least one specific binding.
func (r *Registry) Plugins() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	for k := range r.bindings {
		seen[k.plugin] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

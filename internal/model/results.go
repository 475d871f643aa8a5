package model

import (
	"fmt"
	"iter"
	"slices"

	"github.com/nao1215/scanreport/internal/payload"
)

// Identities of the built-in plugins.
const (
	PluginContentTypes = "content_types"
	PluginHealthMap    = "healthmap"
)

// PluginResults holds each plugin's payload keyed by plugin identity, in
// the order the plugins completed. Generators iterate it in that order.
// The zero value is ready to use.
type PluginResults struct {
	names    []string
	payloads map[string]payload.Value
}

// NewPluginResults returns an empty collection.
func NewPluginResults() *PluginResults {
	return &PluginResults{}
}

// Add records plugin's payload. Plugin identities are unique within a scan,
// so adding the same identity twice fails with ErrDuplicatePlugin.
func (r *PluginResults) Add(plugin string, v payload.Value) error {
	if plugin == "" {
		return ErrEmptyPlugin
	}
	if r.payloads == nil {
		r.payloads = make(map[string]payload.Value)
	}
	if _, exists := r.payloads[plugin]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, plugin)
	}
	r.names = append(r.names, plugin)
	r.payloads[plugin] = v
	return nil
}

// Has reports whether plugin produced a result.
func (r *PluginResults) Has(plugin string) bool {
	_, ok := r.payloads[plugin]
	return ok
}

// Get returns plugin's payload.
func (r *PluginResults) Get(plugin string) (payload.Value, bool) {
	v, ok := r.payloads[plugin]
	return v, ok
}

// Len returns the number of results.
func (r *PluginResults) Len() int {
	return len(r.names)
}

// Names returns the plugin identities in insertion order.
func (r *PluginResults) Names() []string {
	return slices.Clone(r.names)
}

// All iterates results in insertion order.
func (r *PluginResults) All() iter.Seq2[string, payload.Value] {
	return func(yield func(string, payload.Value) bool) {
		for _, name := range r.names {
			if !yield(name, r.payloads[name]) {
				return
			}
		}
	}
}

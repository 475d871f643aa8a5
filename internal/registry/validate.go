package registry

import (
	"github.com/nao1215/scanreport/internal/format"
)

// Gap is a (format, plugin) pair with no formatter, found by Validate.
type Gap struct {
	Format format.Format
	Plugin string
}

// Validate checks every plugin against every format and returns the pairs
// that would render as a placeholder. A gap is not an error: plugins may
// legitimately support only some formats. Pairs covered by a format-wide
// fallback are not gaps.
//
// Validate does not seal the registry, so it can run before the final
// registrations of a startup sequence.
func (r *Registry) Validate(plugins []string, formats []format.Format) []Gap {
	r.mu.Lock()
	defer r.mu.Unlock()

	var gaps []Gap
	for _, f := range formats {
		if _, ok := r.fallbacks[f]; ok {
			continue
		}
		for _, p := range plugins {
			if _, ok := r.bindings[key{format: f, plugin: p}]; !ok {
				gaps = append(gaps, Gap{Format: f, Plugin: p})
			}
		}
	}
	return gaps
}

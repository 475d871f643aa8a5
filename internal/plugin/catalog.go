package plugin

import (
	"errors"
	"fmt"
)

// ErrUnknownPlugin is returned when a configured plugin name is not built in.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Builtins returns the built-in plugins in their default order.
func Builtins() []Plugin {
	return []Plugin{
		NewHealthMap(),
		NewContentTypes(),
	}
}

// Select returns the built-in plugins named in names, in that order. An
// empty list selects every built-in plugin.
func Select(names []string) ([]Plugin, error) {
	all := Builtins()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Plugin, len(all))
	for _, p := range all {
		byName[p.Name()] = p
	}

	selected := make([]Plugin, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// Names returns the identities of plugins.
func Names(plugins []Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	return names
}

// Package flags provides feature flags read from the config file. Flags are
// read-only after initialization and unknown flags are always off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/folio/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagFuzzySearch ranks / and ? matches with the fuzzy matcher instead
	// of plain substring search.
	FlagFuzzySearch = "fuzzy-search"

	// FlagMouse enables mouse row selection in the list panel.
	FlagMouse = "mouse"
)

// known lists every flag with its default value.
var known = map[string]bool{
	FlagFuzzySearch: false,
	FlagMouse:       true,
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over the defaults of the
// known flags. A nil map yields the defaults.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Defaults returns the default value of every known flag.
func Defaults() map[string]bool {
	return maps.Clone(known)
}

// Known returns the names of the flags the program understands, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(known))
}

// Enabled returns true if the named flag is enabled. Unknown flags and a
// nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags. Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

package condition

import (
	"maps"
	"slices"
)

// Features is a set of feature names compiled into the program. It stands in
// for probing whether optional code is linked in: packages that provide an
// optional capability register a name, and conditions test for it.
type Features map[string]struct{}

// NewFeatures creates a set holding names.
func NewFeatures(names ...string) Features {
	f := make(Features, len(names))
	f.Add(names...)
	return f
}

// Add registers names.
func (f Features) Add(names ...string) {
	for _, n := range names {
		f[n] = struct{}{}
	}
}

// Has reports whether name is registered.
func (f Features) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Names returns the registered names in ascending order.
func (f Features) Names() []string {
	return slices.Sorted(maps.Keys(f))
}

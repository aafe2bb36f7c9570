package layer

import (
	"maps"
	"slices"
)

// Map is a read-only layer backed by a snapshot of a property bag.
// It is the usual home for static overrides supplied at bootstrap.
type Map struct {
	data map[string]any
}

// Ensure Map implements Layer and Enumerable.
var (
	_ Layer      = (*Map)(nil)
	_ Enumerable = (*Map)(nil)
)

// NewMap creates a layer from data. The map is copied, so later changes to
// data do not affect the layer. Nil values are dropped.
//
// Example:
//
//	overrides := layer.NewMap(map[string]any{
//	    "server.port": 8080,
//	    "server.host": "localhost",
//	})
func NewMap(data map[string]any) *Map {
	m := &Map{data: make(map[string]any, len(data))}
	for k, v := range data {
		if v != nil {
			m.data[k] = v
		}
	}
	return m
}

// Lookup returns the value stored for key.
func (m *Map) Lookup(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Keys returns the layer's keys in ascending order.
func (m *Map) Keys() []string {
	return slices.Sorted(maps.Keys(m.data))
}

// Data returns a copy of the layer's contents.
func (m *Map) Data() map[string]any {
	return maps.Clone(m.data)
}

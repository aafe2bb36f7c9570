package kasane

import "github.com/yacchi/kasane/layer"

// ResolvedValue represents a configuration value with its origin information.
//
// The two states can be distinguished as follows:
//   - Key does not exist: Exists=false, Value=nil, Path=nil
//   - Key resolved: Exists=true, Value=<value>, Path names the supplying layer
type ResolvedValue struct {
	// Key is the key that was resolved.
	Key string

	// Value is the resolved raw value. nil if Exists is false.
	Value any

	// Exists indicates whether any layer holds the key.
	Exists bool

	// Path lists the layer names from the root's top-level role down to the
	// layer that supplied the value, e.g. ["APPLICATION", "overrides"].
	Path []layer.Name
}

// IsMissing returns true if the key does not exist in any layer.
// This is a convenience method equivalent to !Exists.
func (rv ResolvedValue) IsMissing() bool {
	return !rv.Exists
}

// Role returns the top-level role that supplied the value.
// The second result is false when the key is missing.
func (rv ResolvedValue) Role() (Role, bool) {
	if !rv.Exists || len(rv.Path) == 0 {
		return 0, false
	}
	r, err := ParseRole(string(rv.Path[0]))
	if err != nil {
		return 0, false
	}
	return r, true
}

// String renders the value as Get would. Returns "" when the key is missing.
func (rv ResolvedValue) String() string {
	if !rv.Exists {
		return ""
	}
	return render(rv.Value)
}

// Origin resolves key and reports which layer supplied the value.
//
// Example:
//
//	rv := root.Origin("server.port")
//	if rv.Exists {
//	    fmt.Printf("%s = %v (from %v)\n", rv.Key, rv.Value, rv.Path)
//	}
func (r *Root) Origin(key string) ResolvedValue {
	v, path, ok := r.composite.Origin(key)
	if !ok {
		return ResolvedValue{Key: key}
	}
	return ResolvedValue{Key: key, Value: v, Exists: true, Path: path}
}

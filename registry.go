package kasane

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yacchi/kasane/layer"
)

// Registry gives access to the concrete layer behind each role.
type Registry struct {
	runtime     *layer.Settable
	defaults    *layer.Settable
	remote      *layer.Composite
	application *layer.Composite
	libraries   *layer.Composite
	libs        map[layer.Name]*layer.Composite
	layers      map[Role]layer.Layer
}

// Runtime returns the RUNTIME layer.
func (r *Registry) Runtime() *layer.Settable {
	return r.runtime
}

// Defaults returns the DEFAULTS layer.
func (r *Registry) Defaults() *layer.Settable {
	return r.defaults
}

// Application returns the APPLICATION composite.
func (r *Registry) Application() *layer.Composite {
	return r.application
}

// Layer returns the layer registered for role.
func (r *Registry) Layer(role Role) (layer.Layer, error) {
	l, ok := r.layers[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return l, nil
}

// Settable returns the settable layer registered for role.
func (r *Registry) Settable(role Role) (*layer.Settable, error) {
	switch role {
	case RoleRuntime:
		return r.runtime, nil
	case RoleDefaults:
		return r.defaults, nil
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotSettable, role)
}

// Library returns the sub-composite holding every override set registered
// under name.
func (r *Registry) Library(name string) (*layer.Composite, bool) {
	c, ok := r.libs[layer.Name(name)]
	return c, ok
}

// Libraries returns the registered library names in precedence order.
func (r *Registry) Libraries() []string {
	names := make([]string, 0, len(r.libs))
	for _, ch := range r.libraries.Children() {
		names = append(names, string(ch.Name))
	}
	return names
}

// Remote returns the settable layer backing the remote source name.
// The second result is false if there is no such source or it is not settable.
func (r *Registry) Remote(name string) (*layer.Settable, bool) {
	l, ok := r.remote.Child(layer.Name(name))
	if !ok {
		return nil, false
	}
	s, ok := l.(*layer.Settable)
	return s, ok
}

// RemoteSources returns the remote source names in precedence order.
func (r *Registry) RemoteSources() []string {
	var names []string
	for _, ch := range r.remote.Children() {
		names = append(names, string(ch.Name))
	}
	return names
}

// roles returns the registered roles in precedence order.
func (r *Registry) roles() []Role {
	return slices.Sorted(maps.Keys(r.layers))
}

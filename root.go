package kasane

import (
	"fmt"
	"slices"

	"github.com/yacchi/kasane/layer"
)

// LayerSet holds the layers assembled into a root composite by Build.
//
// Every role is always present in the result. A nil Runtime or Defaults is
// replaced with an empty settable layer; a nil System or Environment with an
// empty layer.
type LayerSet struct {
	Runtime     *layer.Settable
	Remote      []layer.Child
	System      layer.Layer
	Environment layer.Layer
	Application []layer.Child

	// Libraries entries sharing a name are merged into one sub-composite,
	// in registration order.
	Libraries []layer.Child

	Defaults *layer.Settable

	// ConfigName is a label for the configuration. Resolution never reads it.
	ConfigName string
}

// Root is the resolved configuration: the root composite and its registry.
// All read methods are safe for concurrent use.
type Root struct {
	composite  *layer.Composite
	registry   *Registry
	configName string
	components []string
}

// Ensure Root implements PropertySource and layer.Layer.
var (
	_ PropertySource = (*Root)(nil)
	_ layer.Layer    = (*Root)(nil)
)

// Build assembles the root composite in the fixed role order and freezes it.
//
// Returns DuplicateLayerError when two remote sources or two application
// layers share a name.
func Build(set LayerSet) (*Root, error) {
	runtime := set.Runtime
	if runtime == nil {
		runtime = layer.NewSettable()
	}
	defaults := set.Defaults
	if defaults == nil {
		defaults = layer.NewSettable()
	}
	system := set.System
	if system == nil {
		system = layer.NewMap(nil)
	}
	environment := set.Environment
	if environment == nil {
		environment = layer.NewMap(nil)
	}

	remote, err := newGroup(RoleRemote, set.Remote)
	if err != nil {
		return nil, err
	}
	application, err := newGroup(RoleApplication, set.Application)
	if err != nil {
		return nil, err
	}
	libraries, libs, err := newLibraries(set.Libraries)
	if err != nil {
		return nil, err
	}

	reg := &Registry{
		runtime:     runtime,
		defaults:    defaults,
		remote:      remote,
		application: application,
		libraries:   libraries,
		libs:        libs,
		layers: map[Role]layer.Layer{
			RoleRuntime:     runtime,
			RoleRemote:      remote,
			RoleSystem:      system,
			RoleEnvironment: environment,
			RoleApplication: application,
			RoleLibraries:   libraries,
			RoleDefaults:    defaults,
		},
	}

	composite := layer.NewComposite("ROOT")
	for _, role := range Roles() {
		if err := composite.AddChild(role.LayerName(), reg.layers[role]); err != nil {
			return nil, err
		}
	}
	composite.Freeze()

	return &Root{
		composite:  composite,
		registry:   reg,
		configName: set.ConfigName,
	}, nil
}

// newGroup builds the composite for a role from its children, preserving order.
func newGroup(role Role, children []layer.Child) (*layer.Composite, error) {
	c := layer.NewComposite(role.LayerName())
	for _, ch := range children {
		if err := c.AddChild(ch.Name, ch.Layer); err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
	}
	return c, nil
}

// newLibraries groups library layers by name. Each distinct name becomes one
// sub-composite; repeated names add siblings to it in registration order, so
// the first registered layer wins on collision.
func newLibraries(children []layer.Child) (*layer.Composite, map[layer.Name]*layer.Composite, error) {
	libraries := layer.NewComposite(RoleLibraries.LayerName())
	libs := make(map[layer.Name]*layer.Composite)
	for _, ch := range children {
		sub, ok := libs[ch.Name]
		if !ok {
			sub = layer.NewComposite(ch.Name)
			if err := libraries.AddChild(ch.Name, sub); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", RoleLibraries, err)
			}
			libs[ch.Name] = sub
		}
		if err := sub.AddChild(siblingName(ch.Name, sub.Len()+1), ch.Layer); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", RoleLibraries, err)
		}
	}
	return libraries, libs, nil
}

// siblingName names the n-th (1-based) layer registered under base:
// base, base#2, base#3, ...
func siblingName(base layer.Name, n int) layer.Name {
	if n <= 1 {
		return base
	}
	return layer.Name(fmt.Sprintf("%s#%d", base, n))
}

// Lookup returns the raw value for key from the highest layer that holds it.
func (r *Root) Lookup(key string) (any, bool) {
	return r.composite.Lookup(key)
}

// Get returns the resolved value for key rendered as a string.
func (r *Root) Get(key string) (string, bool) {
	v, ok := r.composite.Lookup(key)
	if !ok {
		return "", false
	}
	return render(v), true
}

// GetOr returns the resolved value for key, or def when no layer holds it.
func (r *Root) GetOr(key, def string) string {
	if v, ok := r.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether any layer holds key.
func (r *Root) Has(key string) bool {
	_, ok := r.composite.Lookup(key)
	return ok
}

// Keys returns every key visible through enumerable layers, in ascending order.
func (r *Root) Keys() []string {
	return r.composite.Keys()
}

// Registry returns the registry of the root's layers.
func (r *Root) Registry() *Registry {
	return r.registry
}

// Composite returns the root composite.
func (r *Root) Composite() *layer.Composite {
	return r.composite
}

// ConfigName returns the configuration label given at bootstrap.
func (r *Root) ConfigName() string {
	return r.configName
}

// Components returns the names of components activated at bootstrap, in activation order.
func (r *Root) Components() []string {
	return slices.Clone(r.components)
}

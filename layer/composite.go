package layer

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Child is a named entry of a Composite.
type Child struct {
	Name  Name
	Layer Layer
}

// Composite is an ordered, named aggregation of child layers.
//
// Lookup consults children in registration order and returns the first
// non-nil value, so precedence is purely positional. Nested composites resolve
// with the same rule, which makes overall precedence a depth-first,
// order-preserving flatten of the tree.
//
// Children can only be added while the composite is being built. The first
// Lookup (or an explicit Freeze) fixes the child list; from then on reads take
// no locks and AddChild fails with MutationAfterFreezeError.
type Composite struct {
	name     Name
	children []Child
	frozen   atomic.Bool
	mu       sync.Mutex // guards children until frozen
}

// Ensure Composite implements Layer and Enumerable.
var (
	_ Layer      = (*Composite)(nil)
	_ Enumerable = (*Composite)(nil)
)

// NewComposite creates an empty composite. The name is used in error messages
// and by callers that want to identify the composite.
func NewComposite(name Name) *Composite {
	return &Composite{name: name}
}

// Name returns the composite's name.
func (c *Composite) Name() Name {
	return c.name
}

// AddChild appends l under name. Children added earlier take precedence.
//
// Returns DuplicateLayerError if name is already used by a direct child,
// MutationAfterFreezeError if the composite is frozen and CycleError if l is
// (or contains) this composite.
func (c *Composite) AddChild(name Name, l Layer) error {
	if l == nil {
		return fmt.Errorf("layer %q in %q is nil", name, c.name)
	}
	if sub, ok := l.(*Composite); ok && sub.reaches(c) {
		return &CycleError{Composite: c.name, Name: name}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen.Load() {
		return &MutationAfterFreezeError{Composite: c.name, Name: name}
	}
	for _, ch := range c.children {
		if ch.Name == name {
			return &DuplicateLayerError{Parent: c.name, Name: name}
		}
	}
	c.children = append(c.children, Child{Name: name, Layer: l})
	return nil
}

// Freeze fixes the child list of this composite and of every nested composite.
// Calling Freeze more than once is harmless.
func (c *Composite) Freeze() {
	c.freeze()
	for _, ch := range c.children {
		if sub, ok := ch.Layer.(*Composite); ok {
			sub.Freeze()
		}
	}
}

// Frozen reports whether the child list is fixed.
func (c *Composite) Frozen() bool {
	return c.frozen.Load()
}

func (c *Composite) freeze() {
	if c.frozen.Load() {
		return
	}
	c.mu.Lock()
	c.frozen.Store(true)
	c.mu.Unlock()
}

// Lookup returns the value from the first child that holds key.
func (c *Composite) Lookup(key string) (any, bool) {
	c.freeze()
	for _, ch := range c.children {
		if v, ok := ch.Layer.Lookup(key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Origin returns the value for key together with the path of child names
// that supplied it, outermost first. For example a value coming from child
// "overrides" of child "APPLICATION" yields ["APPLICATION", "overrides"].
func (c *Composite) Origin(key string) (any, []Name, bool) {
	c.freeze()
	for _, ch := range c.children {
		if sub, ok := ch.Layer.(*Composite); ok {
			if v, path, ok := sub.Origin(key); ok {
				return v, append([]Name{ch.Name}, path...), true
			}
			continue
		}
		if v, ok := ch.Layer.Lookup(key); ok && v != nil {
			return v, []Name{ch.Name}, true
		}
	}
	return nil, nil, false
}

// Keys returns the union of keys held by enumerable children, in ascending order.
// Children that cannot enumerate their keys contribute nothing.
func (c *Composite) Keys() []string {
	c.freeze()
	seen := make(map[string]struct{})
	for _, ch := range c.children {
		e, ok := ch.Layer.(Enumerable)
		if !ok {
			continue
		}
		for _, k := range e.Keys() {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Children returns the child entries in precedence order.
func (c *Composite) Children() []Child {
	return slices.Clone(c.snapshot())
}

// Child returns the child registered under name.
func (c *Composite) Child(name Name) (Layer, bool) {
	for _, ch := range c.snapshot() {
		if ch.Name == name {
			return ch.Layer, true
		}
	}
	return nil, false
}

// Len returns the number of direct children.
func (c *Composite) Len() int {
	return len(c.snapshot())
}

// snapshot returns the current child list. Once frozen the list never changes
// and is returned without locking.
func (c *Composite) snapshot() []Child {
	if c.frozen.Load() {
		return c.children
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.children)
}

// reaches reports whether target is c or is nested anywhere below c.
func (c *Composite) reaches(target *Composite) bool {
	if c == target {
		return true
	}
	for _, ch := range c.snapshot() {
		if sub, ok := ch.Layer.(*Composite); ok && sub.reaches(target) {
			return true
		}
	}
	return false
}

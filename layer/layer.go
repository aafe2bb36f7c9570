// Package layer provides the building blocks of a layered property space.
// A layer answers key lookups. A Composite orders named child layers so that
// the first child holding a key wins, and composites nest to any depth.
package layer

// Name identifies a layer within its parent composite.
type Name string

// Kind classifies a layer by how its contents can change.
type Kind int

const (
	// KindSource is a read-only layer whose contents come from elsewhere
	// (a static property bag, the process environment, a remote snapshot).
	KindSource Kind = iota

	// KindSettable is an in-memory layer that accepts programmatic writes.
	KindSettable

	// KindComposite is an ordered aggregation of child layers.
	KindComposite
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSettable:
		return "settable"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Layer is a key lookup that participates in composite resolution.
//
// Lookup never fails: an absent key is reported with ok=false. A stored nil
// value is treated the same as an absent key so that composites fall through
// to lower layers.
type Layer interface {
	Lookup(key string) (value any, ok bool)
}

// Enumerable is implemented by layers that can list the keys they currently hold.
// Keys are returned in ascending order.
type Enumerable interface {
	Keys() []string
}

// KindOf reports the kind of l.
func KindOf(l Layer) Kind {
	switch l.(type) {
	case *Settable:
		return KindSettable
	case *Composite:
		return KindComposite
	default:
		return KindSource
	}
}

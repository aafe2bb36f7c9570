// Package condition decides whether optional components should be activated.
//
// A Condition is evaluated against a Context that exposes resolved properties,
// the names of components that are already bound and the set of features
// compiled into the program. Conditions combine with All, Any and Not.
//
// Example:
//
//	cond := condition.All(
//	    condition.OnProperty("cache.enabled", "true"),
//	    condition.OnMissingBinding("cache"),
//	)
//	if cond.Match(ctx) {
//	    // activate the default cache
//	}
package condition

import (
	"fmt"
	"strings"
)

// Context is the information a condition can inspect.
type Context interface {
	// Get returns the resolved property for key.
	Get(key string) (string, bool)

	// Bound reports whether a component with the given name is already active.
	Bound(name string) bool

	// HasFeature reports whether the named feature is available in this build.
	HasFeature(name string) bool
}

// Condition is a predicate over a Context.
type Condition interface {
	Match(ctx Context) bool
	fmt.Stringer
}

// Evaluate reports whether every condition matches. When one does not, it is
// returned as the second result.
func Evaluate(ctx Context, conds ...Condition) (bool, Condition) {
	for _, c := range conds {
		if !c.Match(ctx) {
			return false, c
		}
	}
	return true, nil
}

type predicate struct {
	desc string
	fn   func(Context) bool
}

func (p predicate) Match(ctx Context) bool { return p.fn(ctx) }
func (p predicate) String() string         { return p.desc }

// New wraps fn as a Condition described by desc.
func New(desc string, fn func(Context) bool) Condition {
	return predicate{desc: desc, fn: fn}
}

// OnBinding matches when every named component is bound.
func OnBinding(names ...string) Condition {
	return New(describe("OnBinding", names), func(ctx Context) bool {
		for _, n := range names {
			if !ctx.Bound(n) {
				return false
			}
		}
		return true
	})
}

// OnMissingBinding matches when none of the named components is bound.
func OnMissingBinding(names ...string) Condition {
	return New(describe("OnMissingBinding", names), func(ctx Context) bool {
		for _, n := range names {
			if ctx.Bound(n) {
				return false
			}
		}
		return true
	})
}

// OnProperty matches when key resolves to exactly value.
func OnProperty(key, value string) Condition {
	return New(fmt.Sprintf("OnProperty(%s=%s)", key, value), func(ctx Context) bool {
		v, ok := ctx.Get(key)
		return ok && v == value
	})
}

// OnMissingProperty matches when key does not resolve in any layer.
func OnMissingProperty(key string) Condition {
	return New(fmt.Sprintf("OnMissingProperty(%s)", key), func(ctx Context) bool {
		_, ok := ctx.Get(key)
		return !ok
	})
}

// OnFeature matches when every named feature is available.
func OnFeature(names ...string) Condition {
	return New(describe("OnFeature", names), func(ctx Context) bool {
		for _, n := range names {
			if !ctx.HasFeature(n) {
				return false
			}
		}
		return true
	})
}

// OnMissingFeature matches when none of the named features is available.
func OnMissingFeature(names ...string) Condition {
	return New(describe("OnMissingFeature", names), func(ctx Context) bool {
		for _, n := range names {
			if ctx.HasFeature(n) {
				return false
			}
		}
		return true
	})
}

// All matches when every condition matches. All() matches.
func All(conds ...Condition) Condition {
	return New(join("All", conds), func(ctx Context) bool {
		ok, _ := Evaluate(ctx, conds...)
		return ok
	})
}

// Any matches when at least one condition matches. Any() does not match.
func Any(conds ...Condition) Condition {
	return New(join("Any", conds), func(ctx Context) bool {
		for _, c := range conds {
			if c.Match(ctx) {
				return true
			}
		}
		return false
	})
}

// Not inverts c.
func Not(c Condition) Condition {
	return New("Not("+c.String()+")", func(ctx Context) bool {
		return !c.Match(ctx)
	})
}

func describe(kind string, names []string) string {
	return kind + "(" + strings.Join(names, ",") + ")"
}

func join(kind string, conds []Condition) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return kind + "(" + strings.Join(parts, ", ") + ")"
}

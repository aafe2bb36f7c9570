// Package layertest provides a conformance kit for layer.Layer implementations.
//
// Example usage with a map layer:
//
//	func TestMap_Compliance(t *testing.T) {
//	    layertest.NewLayerTester(t, func(data map[string]any) layer.Layer {
//	        return layer.NewMap(data)
//	    }).TestAll()
//	}
//
// Layers backed by strings only (environment, system properties) receive
// string test data and are compared by their string form.
package layertest

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/yacchi/kasane/layer"
)

// LayerFactory creates a Layer holding the given data.
// It is called for every test case so each case starts from a fresh layer.
type LayerFactory func(data map[string]any) layer.Layer

// LayerTesterOption configures LayerTester behavior.
type LayerTesterOption func(*LayerTester)

// SkipNilTest skips the nil value test.
// Use this for layers that cannot store nil at all (e.g., environment variables).
// The reason parameter is required to document why the test is skipped.
func SkipNilTest(reason string) LayerTesterOption {
	return func(lt *LayerTester) {
		lt.skipNilReason = reason
	}
}

// AllowExtraKeys relaxes the Keys test for layers that expose keys of their
// own next to the factory data (e.g., built-in system properties).
func AllowExtraKeys() LayerTesterOption {
	return func(lt *LayerTester) {
		lt.extraKeys = true
	}
}

// LayerTester verifies the lookup contract of a Layer implementation.
type LayerTester struct {
	t             *testing.T
	factory       LayerFactory
	skipNilReason string
	extraKeys     bool
}

// NewLayerTester creates a LayerTester for the given LayerFactory.
func NewLayerTester(t *testing.T, factory LayerFactory, opts ...LayerTesterOption) *LayerTester {
	lt := &LayerTester{
		t:       t,
		factory: factory,
	}
	for _, opt := range opts {
		opt(lt)
	}
	return lt
}

// TestAll runs all standard compliance tests.
func (lt *LayerTester) TestAll() {
	lt.t.Run("Lookup", lt.testLookup)
	lt.t.Run("LookupMissing", lt.testLookupMissing)
	lt.t.Run("Empty", lt.testEmpty)
	lt.t.Run("EmptyString", lt.testEmptyString)
	lt.t.Run("NilValue", lt.testNilValue)
	lt.t.Run("Keys", lt.testKeys)
	lt.t.Run("Kind", lt.testKind)
}

func (lt *LayerTester) testLookup(t *testing.T) {
	data := map[string]any{
		"string":      "hello",
		"server.port": "8080",
		"a.b.c":       "deep",
	}
	l := lt.factory(data)

	for key, want := range data {
		t.Run(key, func(t *testing.T) {
			got, ok := l.Lookup(key)
			require(t, ok, "Lookup(%q) returned ok=false", key)
			check(t, valuesEqual(got, want), "Lookup(%q) = %v (%T), want %v", key, got, got, want)
		})
	}
}

func (lt *LayerTester) testLookupMissing(t *testing.T) {
	l := lt.factory(map[string]any{"present": "1"})

	for _, key := range []string{"absent", "present.child", "pres"} {
		got, ok := l.Lookup(key)
		check(t, !ok, "Lookup(%q) = %v, true; want absent", key, got)
		check(t, got == nil, "Lookup(%q) returned non-nil value %v for an absent key", key, got)
	}
}

func (lt *LayerTester) testEmpty(t *testing.T) {
	t.Run("empty_map", func(t *testing.T) {
		l := lt.factory(map[string]any{})
		_, ok := l.Lookup("anything")
		check(t, !ok, "Lookup on empty layer returned ok=true")
	})

	t.Run("nil_map", func(t *testing.T) {
		l := lt.factory(nil)
		_, ok := l.Lookup("anything")
		check(t, !ok, "Lookup on nil layer returned ok=true")
	})
}

// testEmptyString verifies that an empty string is a value, not an absence.
func (lt *LayerTester) testEmptyString(t *testing.T) {
	l := lt.factory(map[string]any{"blank": ""})

	got, ok := l.Lookup("blank")
	require(t, ok, "Lookup(blank) returned ok=false; empty strings must be present")
	check(t, valuesEqual(got, ""), "Lookup(blank) = %v, want empty string", got)
}

// testNilValue verifies that a stored nil falls through like an absent key.
func (lt *LayerTester) testNilValue(t *testing.T) {
	if lt.skipNilReason != "" {
		t.Skip(lt.skipNilReason)
	}
	l := lt.factory(map[string]any{"nil": nil, "set": "1"})

	got, ok := l.Lookup("nil")
	check(t, !ok, "Lookup(nil) = %v, true; a nil value must read as absent", got)

	if e, isEnum := l.(layer.Enumerable); isEnum {
		check(t, !slices.Contains(e.Keys(), "nil"), "Keys() = %v lists a nil-valued key", e.Keys())
	}
}

func (lt *LayerTester) testKeys(t *testing.T) {
	data := map[string]any{"b": "2", "a": "1", "c.d": "3"}
	l := lt.factory(data)

	e, ok := l.(layer.Enumerable)
	if !ok {
		t.Skip("layer is not Enumerable")
	}
	keys := e.Keys()

	check(t, slices.IsSorted(keys), "Keys() = %v, want ascending order", keys)
	for k := range data {
		check(t, slices.Contains(keys, k), "Keys() = %v, missing %q", keys, k)
	}
	if !lt.extraKeys {
		check(t, len(keys) == len(data), "Keys() = %v, want exactly %d keys", keys, len(data))
	}
}

func (lt *LayerTester) testKind(t *testing.T) {
	l := lt.factory(nil)
	kind := layer.KindOf(l)
	check(t, kind.String() != "unknown", "KindOf() = %v", kind)
}

// require fails the test immediately if the condition is false.
func require(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// check reports an error if the condition is false, but continues the test.
func check(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Errorf(format, args...)
	}
}

// valuesEqual compares two values, treating a string as equal to any value
// with the same fmt representation.
func valuesEqual(got, want any) bool {
	if got == nil || want == nil {
		return got == want
	}
	if gotStr, ok := got.(string); ok {
		if wantStr, ok := want.(string); ok {
			return gotStr == wantStr
		}
		return gotStr == fmt.Sprintf("%v", want)
	}
	return reflect.DeepEqual(got, want)
}

package kasane

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/yacchi/kasane/layer"
)

func child(name string, data map[string]any) layer.Child {
	return layer.Child{Name: layer.Name(name), Layer: layer.NewMap(data)}
}

func mustBuild(t testing.TB, set LayerSet) *Root {
	t.Helper()
	root, err := Build(set)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return root
}

func TestBuild_RoleOrder(t *testing.T) {
	root := mustBuild(t, LayerSet{})

	children := root.Composite().Children()
	if len(children) != len(Roles()) {
		t.Fatalf("root has %d children, want %d", len(children), len(Roles()))
	}
	for i, role := range Roles() {
		if children[i].Name != role.LayerName() {
			t.Errorf("child %d = %s, want %s", i, children[i].Name, role.LayerName())
		}
	}
	if !root.Composite().Frozen() {
		t.Error("root composite should be frozen after Build")
	}
}

// Runtime {}, Application {a.b=1}, Defaults {a.b=0, c.d=2}.
func TestRoot_BasicResolution(t *testing.T) {
	defaults := layer.NewSettable()
	defaults.SetAll(map[string]any{"a.b": "0", "c.d": "2"})

	root := mustBuild(t, LayerSet{
		Application: []layer.Child{child("overrides", map[string]any{"a.b": "1"})},
		Defaults:    defaults,
	})

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"a.b", "1", true},
		{"c.d", "2", true},
		{"x.y", "", false},
	}
	for _, tt := range tests {
		got, ok := root.Get(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	root.Registry().Runtime().Set("a.b", "9")
	if got, _ := root.Get("a.b"); got != "9" {
		t.Errorf("Get(a.b) after runtime set = %q, want 9", got)
	}
}

func TestRoot_RuntimeShadowsEverything(t *testing.T) {
	remote := layer.NewSettable()
	remote.Set("k", "remote")

	root := mustBuild(t, LayerSet{
		Remote:      []layer.Child{{Name: "redis", Layer: remote}},
		System:      layer.NewMap(map[string]any{"k": "system"}),
		Environment: layer.NewMap(map[string]any{"k": "env"}),
		Application: []layer.Child{child("app", map[string]any{"k": "app"})},
		Libraries:   []layer.Child{child("lib", map[string]any{"k": "lib"})},
	})
	root.Registry().Defaults().Set("k", "default")

	want := []string{"remote", "system", "env", "app", "lib", "default"}
	if got, _ := root.Get("k"); got != want[0] {
		t.Fatalf("Get(k) = %q, want %q", got, want[0])
	}

	root.Registry().Runtime().Set("k", "runtime")
	if got, _ := root.Get("k"); got != "runtime" {
		t.Errorf("Get(k) = %q, want runtime", got)
	}

	root.Registry().Runtime().Clear("k")
	remote.Clear("k")
	if got, _ := root.Get("k"); got != want[1] {
		t.Errorf("Get(k) after clearing runtime and remote = %q, want %q", got, want[1])
	}
}

func TestRoot_DefaultsVisibleOnlyWhenUnshadowed(t *testing.T) {
	root := mustBuild(t, LayerSet{
		Application: []layer.Child{child("app", map[string]any{"shadowed": "app"})},
	})
	root.Registry().Defaults().SetAll(map[string]any{"shadowed": "default", "only": "default"})

	if got, _ := root.Get("shadowed"); got != "app" {
		t.Errorf("Get(shadowed) = %q, want app", got)
	}
	if got, _ := root.Get("only"); got != "default" {
		t.Errorf("Get(only) = %q, want default", got)
	}
}

func TestRoot_LibrariesMergeByName(t *testing.T) {
	root := mustBuild(t, LayerSet{
		Libraries: []layer.Child{
			child("libA", map[string]any{"x": "1", "z": "first"}),
			child("libB", map[string]any{"w": "b"}),
			child("libA", map[string]any{"y": "2", "z": "second"}),
		},
	})

	for key, want := range map[string]string{"x": "1", "y": "2", "z": "first", "w": "b"} {
		if got, _ := root.Get(key); got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	reg := root.Registry()
	if got := reg.Libraries(); !reflect.DeepEqual(got, []string{"libA", "libB"}) {
		t.Errorf("Libraries() = %v", got)
	}
	libA, ok := reg.Library("libA")
	if !ok {
		t.Fatal("Library(libA) not found")
	}
	names := []layer.Name{}
	for _, ch := range libA.Children() {
		names = append(names, ch.Name)
	}
	if !reflect.DeepEqual(names, []layer.Name{"libA", "libA#2"}) {
		t.Errorf("libA children = %v", names)
	}
	if _, ok := reg.Library("missing"); ok {
		t.Error("Library(missing) should not exist")
	}
}

func TestBuild_DuplicateNames(t *testing.T) {
	tests := []struct {
		name string
		set  LayerSet
	}{
		{
			name: "application",
			set: LayerSet{Application: []layer.Child{
				child("a", nil),
				child("a", nil),
			}},
		},
		{
			name: "remote",
			set: LayerSet{Remote: []layer.Child{
				{Name: "r", Layer: layer.NewSettable()},
				{Name: "r", Layer: layer.NewSettable()},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.set)
			var dup *DuplicateLayerError
			if !errors.As(err, &dup) {
				t.Fatalf("Build() error = %v, want DuplicateLayerError", err)
			}
		})
	}
}

func TestRoot_Origin(t *testing.T) {
	root := mustBuild(t, LayerSet{
		Application: []layer.Child{child("overrides", map[string]any{"a": 1})},
		Libraries:   []layer.Child{child("lib", map[string]any{"b": true})},
	})

	rv := root.Origin("a")
	if !rv.Exists || rv.Value != 1 || rv.String() != "1" {
		t.Errorf("Origin(a) = %+v", rv)
	}
	if !reflect.DeepEqual(rv.Path, []layer.Name{"APPLICATION", "overrides"}) {
		t.Errorf("Origin(a).Path = %v", rv.Path)
	}
	if role, ok := rv.Role(); !ok || role != RoleApplication {
		t.Errorf("Origin(a).Role() = %v, %v", role, ok)
	}

	rv = root.Origin("b")
	if !reflect.DeepEqual(rv.Path, []layer.Name{"LIBRARIES", "lib", "lib"}) {
		t.Errorf("Origin(b).Path = %v", rv.Path)
	}

	rv = root.Origin("missing")
	if !rv.IsMissing() || rv.String() != "" {
		t.Errorf("Origin(missing) = %+v", rv)
	}
	if _, ok := rv.Role(); ok {
		t.Error("Role() of missing value should be false")
	}
}

func TestRoot_GetRendersScalars(t *testing.T) {
	root := mustBuild(t, LayerSet{
		Application: []layer.Child{child("typed", map[string]any{
			"int":   int64(42),
			"float": 0.25,
			"bool":  false,
			"str":   "s",
		})},
	})

	for key, want := range map[string]string{"int": "42", "float": "0.25", "bool": "false", "str": "s"} {
		if got, ok := root.Get(key); !ok || got != want {
			t.Errorf("Get(%q) = %q, %v; want %q", key, got, ok, want)
		}
	}
	if got := root.GetOr("missing", "fallback"); got != "fallback" {
		t.Errorf("GetOr(missing) = %q", got)
	}
	if root.Has("missing") || !root.Has("int") {
		t.Error("Has() gave unexpected results")
	}
}

func TestRoot_Keys(t *testing.T) {
	root := mustBuild(t, LayerSet{
		System:      layer.NewMap(map[string]any{"s": "1"}),
		Application: []layer.Child{child("app", map[string]any{"a": "1", "s": "2"})},
	})
	root.Registry().Defaults().Set("d", "1")

	if got := root.Keys(); !reflect.DeepEqual(got, []string{"a", "d", "s"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestRegistry(t *testing.T) {
	remote := layer.NewSettable()
	root := mustBuild(t, LayerSet{
		Remote: []layer.Child{
			{Name: "redis", Layer: remote},
			child("static", nil),
		},
	})
	reg := root.Registry()

	if s, ok := reg.Remote("redis"); !ok || s != remote {
		t.Errorf("Remote(redis) = %v, %v", s, ok)
	}
	if _, ok := reg.Remote("static"); ok {
		t.Error("Remote(static) is not settable and should not be returned")
	}
	if got := reg.RemoteSources(); !reflect.DeepEqual(got, []string{"redis", "static"}) {
		t.Errorf("RemoteSources() = %v", got)
	}

	for _, role := range Roles() {
		if _, err := reg.Layer(role); err != nil {
			t.Errorf("Layer(%s) error = %v", role, err)
		}
	}
	if _, err := reg.Layer(Role(99)); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Layer(99) error = %v, want ErrUnknownRole", err)
	}

	if s, err := reg.Settable(RoleDefaults); err != nil || s != reg.Defaults() {
		t.Errorf("Settable(DEFAULTS) = %v, %v", s, err)
	}
	if _, err := reg.Settable(RoleSystem); !errors.Is(err, ErrNotSettable) {
		t.Errorf("Settable(SYSTEM) error = %v, want ErrNotSettable", err)
	}
	if _, err := reg.Settable(Role(-1)); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Settable(-1) error = %v, want ErrUnknownRole", err)
	}
}

func TestSourceOf(t *testing.T) {
	src := SourceOf(layer.NewMap(map[string]any{"port": 8080}))

	if got, ok := src.Get("port"); !ok || got != "8080" {
		t.Errorf("Get(port) = %q, %v", got, ok)
	}
	if got := src.GetOr("host", "localhost"); got != "localhost" {
		t.Errorf("GetOr(host) = %q", got)
	}
}

// For any contents of the settable and static layers, a key resolves to the
// value of the first role, in precedence order, whose layer holds it.
func TestRoot_PrecedenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keyGen := rapid.SampledFrom([]string{"a", "b", "c"})
		bagGen := rapid.MapOfN(keyGen, rapid.StringMatching(`[a-z]{1,3}`), 0, 3)

		runtimeBag := bagGen.Draw(t, "runtime")
		systemBag := bagGen.Draw(t, "system")
		appBag := bagGen.Draw(t, "application")
		libBag := bagGen.Draw(t, "libraries")
		defaultsBag := bagGen.Draw(t, "defaults")
		stack := []map[string]string{runtimeBag, systemBag, appBag, libBag, defaultsBag}

		root, err := Build(LayerSet{
			System:      layer.NewMap(toAny(systemBag)),
			Application: []layer.Child{{Name: "app", Layer: layer.NewMap(toAny(appBag))}},
			Libraries:   []layer.Child{{Name: "lib", Layer: layer.NewMap(toAny(libBag))}},
		})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		root.Registry().Runtime().SetAll(toAny(runtimeBag))
		root.Registry().Defaults().SetAll(toAny(defaultsBag))

		key := keyGen.Draw(t, "key")
		want, wantOK := "", false
		for _, bag := range stack {
			if v, ok := bag[key]; ok {
				want, wantOK = v, true
				break
			}
		}

		got, ok := root.Get(key)
		if got != want || ok != wantOK {
			t.Fatalf("Get(%q) = %q, %v; want %q, %v", key, got, ok, want, wantOK)
		}
	})
}

func toAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

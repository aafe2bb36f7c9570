package condition

import "testing"

type fakeContext struct {
	props    map[string]string
	bound    map[string]bool
	features Features
}

func (c fakeContext) Get(key string) (string, bool) {
	v, ok := c.props[key]
	return v, ok
}

func (c fakeContext) Bound(name string) bool {
	return c.bound[name]
}

func (c fakeContext) HasFeature(name string) bool {
	return c.features.Has(name)
}

func TestConditions(t *testing.T) {
	ctx := fakeContext{
		props:    map[string]string{"cache.enabled": "true", "mode": "prod"},
		bound:    map[string]bool{"db": true},
		features: NewFeatures("redis"),
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"binding present", OnBinding("db"), true},
		{"binding partially present", OnBinding("db", "cache"), false},
		{"missing binding", OnMissingBinding("cache"), true},
		{"missing binding but bound", OnMissingBinding("cache", "db"), false},
		{"property equal", OnProperty("cache.enabled", "true"), true},
		{"property different", OnProperty("mode", "dev"), false},
		{"property absent", OnProperty("absent", ""), false},
		{"missing property", OnMissingProperty("absent"), true},
		{"missing property present", OnMissingProperty("mode"), false},
		{"feature", OnFeature("redis"), true},
		{"missing feature", OnMissingFeature("ssm"), true},
		{"missing feature present", OnMissingFeature("ssm", "redis"), false},
		{"all", All(OnBinding("db"), OnProperty("mode", "prod")), true},
		{"all with failure", All(OnBinding("db"), OnProperty("mode", "dev")), false},
		{"empty all", All(), true},
		{"any", Any(OnProperty("mode", "dev"), OnFeature("redis")), true},
		{"empty any", Any(), false},
		{"not", Not(OnBinding("cache")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Match(ctx); got != tt.want {
				t.Errorf("%s.Match() = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctx := fakeContext{props: map[string]string{"a": "1"}}

	ok, failed := Evaluate(ctx, OnProperty("a", "1"), OnMissingProperty("a"), OnProperty("b", "2"))
	if ok {
		t.Fatal("Evaluate() = true, want false")
	}
	if failed.String() != "OnMissingProperty(a)" {
		t.Errorf("failed condition = %s, want OnMissingProperty(a)", failed)
	}

	if ok, failed := Evaluate(ctx); !ok || failed != nil {
		t.Errorf("Evaluate() with no conditions = %v, %v", ok, failed)
	}
}

func TestConditionString(t *testing.T) {
	c := All(OnBinding("a", "b"), Not(OnFeature("x")), Any(OnProperty("k", "v")))
	want := "All(OnBinding(a,b), Not(OnFeature(x)), Any(OnProperty(k=v)))"
	if c.String() != want {
		t.Errorf("String() = %q, want %q", c.String(), want)
	}
}

func TestFeatures(t *testing.T) {
	f := NewFeatures("b", "a")
	f.Add("c")
	if !f.Has("c") || f.Has("d") {
		t.Errorf("Has() gave unexpected results for %v", f.Names())
	}
	if got := f.Names(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("Names() = %v", got)
	}
}

package kasane

import (
	"errors"
	"testing"

	"github.com/yacchi/kasane/format"
)

func TestNewSeeder(t *testing.T) {
	tests := []struct {
		name    string
		target  Role
		wantErr error
	}{
		{"runtime", RoleRuntime, nil},
		{"defaults", RoleDefaults, nil},
		{"application", RoleApplication, ErrNotSettable},
		{"unknown", Role(12), ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSeeder(tt.name, tt.target, format.Bag{"k": "v"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewSeeder() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (s.Name() != tt.name || s.Target() != tt.target) {
				t.Errorf("seeder = %s/%s", s.Name(), s.Target())
			}
		})
	}
}

func TestSeeder_SnapshotIsEager(t *testing.T) {
	bag := format.Bag{"a": "1"}
	s, err := NewSeeder("s", RoleRuntime, bag)
	if err != nil {
		t.Fatal(err)
	}

	bag["a"] = "changed"
	bag["b"] = "added"

	got := s.Seed()
	if got["a"] != "1" || len(got) != 1 {
		t.Errorf("Seed() = %v, want snapshot taken at creation", got)
	}

	got["a"] = "mutated"
	if s.Seed()["a"] != "1" {
		t.Error("Seed() should return a fresh copy on each call")
	}
}

func TestSeeder_NilBag(t *testing.T) {
	s, err := NewSeeder("empty", RoleDefaults, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Seed(); got == nil || len(got) != 0 {
		t.Errorf("Seed() = %v, want empty map", got)
	}
}

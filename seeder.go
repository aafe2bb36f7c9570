package kasane

import (
	"fmt"
	"maps"

	"github.com/yacchi/kasane/layer"
)

// Seeder is a named batch of properties written into a settable layer once,
// at activation.
//
// The bag is copied when the seeder is created, so later changes to the
// caller's map are not observed.
type Seeder struct {
	name   string
	target Role
	values map[string]any
}

// NewSeeder creates a seeder that writes bag into the target role's layer.
// Only RoleRuntime and RoleDefaults can be targeted.
func NewSeeder(name string, target Role, bag map[string]any) (*Seeder, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("seeder %q: %w: %s", name, ErrUnknownRole, target)
	}
	if !target.Settable() {
		return nil, fmt.Errorf("seeder %q: %w: %s", name, ErrNotSettable, target)
	}
	return &Seeder{name: name, target: target, values: maps.Clone(bag)}, nil
}

// Name returns the seeder's name.
func (s *Seeder) Name() string {
	return s.name
}

// Target returns the role the seeder writes into.
func (s *Seeder) Target() Role {
	return s.target
}

// Seed returns a fresh copy of the seeded properties.
func (s *Seeder) Seed() map[string]any {
	if s.values == nil {
		return map[string]any{}
	}
	return maps.Clone(s.values)
}

// apply writes the seeded properties into dst in a single atomic update.
func (s *Seeder) apply(dst *layer.Settable) {
	dst.SetAll(s.Seed())
}

package layer

import "fmt"

// DuplicateLayerError is returned when a composite already has a child
// registered under the same name.
type DuplicateLayerError struct {
	Parent Name
	Name   Name
}

func (e *DuplicateLayerError) Error() string {
	return fmt.Sprintf("layer %q already exists in %q", e.Name, e.Parent)
}

// MutationAfterFreezeError is returned when a child is added to a composite
// after its structure has been frozen by the first lookup or an explicit Freeze.
type MutationAfterFreezeError struct {
	Composite Name
	Name      Name
}

func (e *MutationAfterFreezeError) Error() string {
	return fmt.Sprintf("cannot add layer %q: composite %q is frozen", e.Name, e.Composite)
}

// CycleError is returned when adding a child would make a composite contain itself.
type CycleError struct {
	Composite Name
	Name      Name
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("adding layer %q to %q would create a cycle", e.Name, e.Composite)
}

package kasane

import (
	"errors"
	"fmt"

	"github.com/yacchi/kasane/layer"
)

var (
	// ErrAlreadyActivated is returned when a bootstrap is modified or activated
	// after it has already been activated.
	ErrAlreadyActivated = errors.New("kasane: already activated")

	// ErrNotActivated is returned when the root is requested before activation.
	ErrNotActivated = errors.New("kasane: not activated")

	// ErrUnknownRole is returned for a role outside the fixed set.
	ErrUnknownRole = errors.New("kasane: unknown role")

	// ErrNotSettable is returned when a seeder targets a role that cannot be written.
	ErrNotSettable = errors.New("kasane: role is not settable")
)

// Structural errors raised while building the root composite.
type (
	DuplicateLayerError      = layer.DuplicateLayerError
	MutationAfterFreezeError = layer.MutationAfterFreezeError
	CycleError               = layer.CycleError
)

// ConversionError is returned by typed accessors when a value is present but
// cannot be converted to the requested type.
type ConversionError struct {
	Key    string
	Value  any
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q value %v to %s: %v", e.Key, e.Value, e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

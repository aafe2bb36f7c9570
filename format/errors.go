package format

import "fmt"

// InvalidSourceError is returned when a property source cannot be turned into
// key/value pairs: malformed syntax, a root that is not a mapping, or a value
// that has no flat representation (such as a list of tables).
type InvalidSourceError struct {
	Source string // file path, empty when parsing raw bytes
	Format Format
	Key    string // offending key, when known
	Err    error
}

func (e *InvalidSourceError) Error() string {
	msg := fmt.Sprintf("invalid %s source", e.Format)
	if e.Source != "" {
		msg += fmt.Sprintf(" %q", e.Source)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" at %q", e.Key)
	}
	return msg + ": " + e.Err.Error()
}

func (e *InvalidSourceError) Unwrap() error {
	return e.Err
}

package format

import (
	"fmt"

	"github.com/magiconair/properties"
)

// propertiesLoader reads UTF-8 input and keeps ${...} references literal.
var propertiesLoader = &properties.Loader{
	Encoding:         properties.UTF8,
	DisableExpansion: true,
}

// ParseProperties parses the properties syntax into a bag of string values.
//
// Each logical line holds one entry. A key ends at the first unescaped '=',
// ':' or whitespace; the separator may be padded with whitespace. Lines whose
// first non-blank character is '#' or '!' are comments. A line ending in a
// backslash continues on the next line with leading whitespace removed.
// Escapes \t \n \r \f and \uXXXX are decoded. A repeated key keeps its last
// value. References such as ${other.key} are not expanded.
//
// Example:
//
//	# database
//	db.url = postgres://localhost/app
//	db.pool: 10
//	greeting=hello \
//	         world
func ParseProperties(data []byte) (Bag, error) {
	p, err := propertiesLoader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}

	m := p.Map()
	bag := make(Bag, len(m))
	for k, v := range m {
		bag[k] = v
	}
	return bag, nil
}

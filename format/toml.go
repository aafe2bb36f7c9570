package format

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

var tomlUnmarshal = toml.Unmarshal

func parseTOML(data []byte) (Bag, error) {
	var doc map[string]any
	if err := tomlUnmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if doc == nil {
		return Bag{}, nil
	}
	return flattenAs(doc, FormatTOML)
}

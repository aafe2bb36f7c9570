package format

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (Bag, error) {
	if len(data) == 0 {
		return Bag{}, nil
	}

	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	switch obj := root.(type) {
	case nil:
		return Bag{}, nil
	case map[string]any:
		return flattenAs(obj, FormatYAML)
	case map[any]any:
		doc := make(map[string]any, len(obj))
		for k, v := range obj {
			doc[fmt.Sprint(k)] = v
		}
		return flattenAs(doc, FormatYAML)
	default:
		return nil, fmt.Errorf("root must be a mapping, got %T", root)
	}
}

package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

func parseJSON(data []byte) (Bag, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Bag{}, nil
	}
	return decodeJSONObject(trimmed, FormatJSON)
}

func parseJSONC(data []byte) (Bag, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Bag{}, nil
	}

	v, err := hujson.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONC: %w", err)
	}
	// Standardize to remove comments and trailing commas for decoding
	v.Standardize()

	return decodeJSONObject(v.Pack(), FormatJSONC)
}

func decodeJSONObject(data []byte, f Format) (Bag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f, err)
	}
	if root == nil {
		return Bag{}, nil
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("root must be an object, got %T", root)
	}
	return flattenAs(obj, f)
}

// flattenAs flattens doc and stamps f onto any InvalidSourceError.
func flattenAs(doc map[string]any, f Format) (Bag, error) {
	bag, err := Flatten(doc)
	if invalid, ok := err.(*InvalidSourceError); ok {
		invalid.Format = f
	}
	return bag, err
}

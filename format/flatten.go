package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Flatten converts a nested document into a flat bag with dotted keys.
//
// Nested maps contribute their keys joined with '.'. Lists of scalars become a
// comma-separated string. Nil values are dropped. Lists that contain maps or
// other lists cannot be flattened and produce an InvalidSourceError naming the key.
// So does a key reached twice, such as a literal "a.b" next to a nested a: {b: ...}.
//
// Example:
//
//	Flatten(map[string]any{"server": map[string]any{"port": 80}, "tags": []any{"a", "b"}})
//	// => {"server.port": 80, "tags": "a,b"}
func Flatten(doc map[string]any) (Bag, error) {
	bag := make(Bag)
	for k, v := range doc {
		if err := flattenInto(bag, k, v); err != nil {
			return nil, err
		}
	}
	return bag, nil
}

func flattenInto(bag Bag, key string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, child := range val {
			if err := flattenInto(bag, key+"."+k, child); err != nil {
				return err
			}
		}
	case map[any]any:
		for k, child := range val {
			if err := flattenInto(bag, key+"."+fmt.Sprint(k), child); err != nil {
				return err
			}
		}
	case []any:
		parts := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := scalarString(item)
			if !ok {
				return &InvalidSourceError{
					Key: key,
					Err: fmt.Errorf("list element %d is %T, only scalar lists are supported", i, item),
				}
			}
			parts = append(parts, s)
		}
		return put(bag, key, strings.Join(parts, ","))
	case json.Number:
		return put(bag, key, numberValue(val))
	default:
		return put(bag, key, val)
	}
	return nil
}

// put stores v under key unless another path already flattened to key.
func put(bag Bag, key string, v any) error {
	if _, exists := bag[key]; exists {
		return &InvalidSourceError{
			Key: key,
			Err: errors.New("key is defined more than once"),
		}
	}
	bag[key] = v
	return nil
}

// scalarString renders a list element. Maps and nested lists are rejected.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case map[string]any, map[any]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}

// numberValue keeps integral JSON numbers as int64.
func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

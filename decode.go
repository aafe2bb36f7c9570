package kasane

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const tagName = "kasane"

// Bind decodes every property under prefix into target, which must be a
// pointer to a struct or map.
//
// Keys are resolved through the full precedence stack, stripped of the prefix
// and split on '.' into nested maps before decoding. Field names are matched
// case-insensitively, or by the `kasane` struct tag. String values are
// converted weakly: "8080" decodes into an int, "a,b" into a []string and
// "1m30s" into a time.Duration.
//
// When a key is both a value and the parent of other keys ("db" and "db.url"),
// the nested keys win.
//
// Example:
//
//	type ServerConfig struct {
//	    Host    string        `kasane:"host"`
//	    Port    int           `kasane:"port"`
//	    Timeout time.Duration `kasane:"timeout"`
//	}
//
//	var cfg ServerConfig
//	err := root.Bind("server", &cfg)
func (r *Root) Bind(prefix string, target any) error {
	data := r.Tree(prefix)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          tagName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("bind %q: %w", prefix, err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("bind %q: %w", prefix, err)
	}
	return nil
}

// Tree returns the resolved properties under prefix as nested maps.
// An empty prefix selects every key.
func (r *Root) Tree(prefix string) map[string]any {
	tree := make(map[string]any)
	for _, key := range r.Keys() {
		rel, ok := relativeKey(key, prefix)
		if !ok {
			continue
		}
		v, ok := r.Lookup(key)
		if !ok {
			continue
		}
		insert(tree, strings.Split(rel, "."), v)
	}
	return tree
}

func relativeKey(key, prefix string) (string, bool) {
	if prefix == "" {
		return key, key != ""
	}
	rel, ok := strings.CutPrefix(key, prefix+".")
	return rel, ok && rel != ""
}

// insert stores v at path, replacing scalar parents with maps.
func insert(tree map[string]any, path []string, v any) {
	node := tree
	for _, seg := range path[:len(path)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	last := path[len(path)-1]
	if _, isMap := node[last].(map[string]any); isMap {
		return
	}
	node[last] = v
}

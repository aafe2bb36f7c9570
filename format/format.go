// Package format parses configuration files into flat property bags.
//
// A property bag maps dotted keys ("server.port") to string or scalar values.
// Structured formats are flattened on the way in: nested tables become dotted
// keys and lists of scalars become comma-separated strings.
//
// Supported formats:
//   - properties: key=value / key: value lines (see ParseProperties)
//   - JSON (encoding/json)
//   - JSONC, JSON with comments and trailing commas (github.com/tailscale/hujson)
//   - YAML (gopkg.in/yaml.v3)
//   - TOML (github.com/pelletier/go-toml/v2)
package format

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Bag is a flat set of properties keyed by dotted names.
type Bag = map[string]any

// Format identifies the syntax of a property source.
type Format string

const (
	// FormatProperties represents key=value properties files.
	FormatProperties Format = "properties"

	// FormatJSON represents standard JSON.
	FormatJSON Format = "json"

	// FormatJSONC represents JSON with Comments (using github.com/tailscale/hujson).
	FormatJSONC Format = "jsonc"

	// FormatYAML represents YAML format (using gopkg.in/yaml.v3).
	FormatYAML Format = "yaml"

	// FormatTOML represents TOML format (using github.com/pelletier/go-toml/v2).
	FormatTOML Format = "toml"
)

// Extensions lists the file extensions recognised by FormatFromPath, in the
// order a config-file search should try them.
var Extensions = []string{".properties", ".yaml", ".yml", ".toml", ".json", ".jsonc"}

var osReadFile = os.ReadFile

// FormatFromPath infers the format from a file name extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return FormatProperties, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".json":
		return FormatJSON, true
	case ".jsonc":
		return FormatJSONC, true
	}
	return "", false
}

// Parse decodes data in format f into a flat property bag.
// Empty input yields an empty bag.
func Parse(data []byte, f Format) (Bag, error) {
	var (
		bag Bag
		err error
	)
	switch f {
	case FormatProperties:
		bag, err = ParseProperties(data)
	case FormatJSON:
		bag, err = parseJSON(data)
	case FormatJSONC:
		bag, err = parseJSONC(data)
	case FormatYAML:
		bag, err = parseYAML(data)
	case FormatTOML:
		bag, err = parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		var invalid *InvalidSourceError
		if errors.As(err, &invalid) {
			return nil, err
		}
		return nil, &InvalidSourceError{Format: f, Err: err}
	}
	return bag, nil
}

// LoadFile reads path and parses it using the format implied by its extension.
// A missing file yields an error matching fs.ErrNotExist.
//
// Example:
//
//	bag, err := format.LoadFile("config/app.yaml")
//	if errors.Is(err, fs.ErrNotExist) {
//	    // optional file
//	}
func LoadFile(path string) (Bag, error) {
	f, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("cannot infer format of %q", path)
	}
	data, err := osReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	bag, err := Parse(data, f)
	if err != nil {
		var invalid *InvalidSourceError
		if errors.As(err, &invalid) {
			invalid.Source = path
		}
		return nil, err
	}
	return bag, nil
}

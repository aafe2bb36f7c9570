package kasane

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yacchi/kasane/layer"
)

// PropertySource is a read-only view of resolved string properties.
// Lookups have no side effects and never fail.
type PropertySource interface {
	// Get returns the value for key and whether it was found.
	Get(key string) (string, bool)

	// GetOr returns the value for key, or def when it is absent.
	GetOr(key, def string) string
}

// SourceOf adapts any layer to a PropertySource.
//
// Example:
//
//	src := kasane.SourceOf(root.Registry().Defaults())
//	port := src.GetOr("server.port", "8080")
func SourceOf(l layer.Layer) PropertySource {
	return layerSource{l}
}

type layerSource struct {
	l layer.Layer
}

func (s layerSource) Get(key string) (string, bool) {
	v, ok := s.l.Lookup(key)
	if !ok || v == nil {
		return "", false
	}
	return render(v), true
}

func (s layerSource) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// render returns the canonical string form of a scalar value.
func render(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return strconv.FormatInt(toInt64(val), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(toUint64(val), 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Duration:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}

package kasane

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Typed accessors return def when no layer holds the key and a
// *ConversionError when the value is present but cannot be converted.
// String values are trimmed before parsing.

// GetString returns the value for key as a string, or def when absent.
func (r *Root) GetString(key, def string) string {
	return r.GetOr(key, def)
}

// GetInt returns the value for key as an int.
func (r *Root) GetInt(key string, def int) (int, error) {
	raw, ok := r.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := convertToInt(raw)
	if err == nil && (v < math.MinInt || v > math.MaxInt) {
		err = strconv.ErrRange
	}
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Target: "int", Err: err}
	}
	return int(v), nil
}

// GetInt64 returns the value for key as an int64.
func (r *Root) GetInt64(key string, def int64) (int64, error) {
	raw, ok := r.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := convertToInt(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Target: "int64", Err: err}
	}
	return v, nil
}

// GetFloat returns the value for key as a float64.
func (r *Root) GetFloat(key string, def float64) (float64, error) {
	raw, ok := r.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := convertToFloat(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Target: "float64", Err: err}
	}
	return v, nil
}

// GetBool returns the value for key as a bool.
// Accepted strings: true/false, 1/0, yes/no, on/off, t/f, y/n (case-insensitive).
func (r *Root) GetBool(key string, def bool) (bool, error) {
	raw, ok := r.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := convertToBool(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Target: "bool", Err: err}
	}
	return v, nil
}

// GetDuration returns the value for key as a time.Duration.
// Strings use time.ParseDuration syntax ("1m30s"); a bare integer, as a
// number or a string, is a count of milliseconds.
func (r *Root) GetDuration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := r.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := convertToDuration(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Target: "time.Duration", Err: err}
	}
	return v, nil
}

// GetStringSlice returns the value for key split on commas, with each element
// trimmed and empty elements dropped.
func (r *Root) GetStringSlice(key string, def []string) []string {
	raw, ok := r.Lookup(key)
	if !ok {
		return def
	}
	if list, ok := raw.([]string); ok {
		return append([]string(nil), list...)
	}
	return splitList(render(raw))
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// convertToBool converts various types to bool.
func convertToBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return stringToBool(v)
	case int, int8, int16, int32, int64:
		return toInt64(v) != 0, nil
	case uint, uint8, uint16, uint32, uint64:
		return toUint64(v) != 0, nil
	case float32:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// stringToBool converts a string to bool with common truthy/falsy values.
func stringToBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// convertToInt converts various types to int64. Floats must be integral.
func convertToInt(value any) (int64, error) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return floatToInt(f)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int, int8, int16, int32, int64:
		return toInt64(v), nil
	case uint, uint8, uint16, uint32, uint64:
		u := toUint64(v)
		if u > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(u), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}

// convertToFloat converts various types to float64.
func convertToFloat(value any) (float64, error) {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int, int8, int16, int32, int64:
		return float64(toInt64(v)), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(toUint64(v)), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", value)
	}
}

// convertToDuration converts a duration string or a millisecond count.
func convertToDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return d, nil
	default:
		ms, err := convertToInt(value)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
}

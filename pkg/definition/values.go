package definition

import (
	"encoding/json"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normalize maps numeric values onto int64 or float64, so that values decoded
// from YAML, JSON and front matter compare equal. Other values pass through.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64ToValue(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return uint64ToValue(x)
	case float32:
		return floatToValue(float64(x))
	case float64:
		return floatToValue(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return floatToValue(f)
		}
		return x.String()
	default:
		return v
	}
}

// ParseScalar reads s as a YAML scalar ("true", "3", "1.5", "null", "text")
// and normalizes the result.
func ParseScalar(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return Normalize(v)
}

// NormalizeMap normalizes every value of m in place and returns it.
func NormalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = Normalize(v)
	}
	return m
}

func uint64ToValue(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return float64(u)
}

// floatToValue keeps integral floats comparable with integers.
func floatToValue(f float64) any {
	if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
		return int64(f)
	}
	return f
}

// Package envmap converts native Go values into the JSON-shaped forms rule
// engines expect, so struct values read the same in expr, CEL, and JS.
package envmap

import "encoding/json"

// Normalize round-trips v through JSON, turning structs into
// map[string]any and typed slices into []any. Scalars pass through
// unchanged and unmarshalable values are returned as-is.
func Normalize(v any) any {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	}
	buffer, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return v
	}
	return out
}

// NormalizeMap applies Normalize to every value of m, returning a fresh map.
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = Normalize(value)
	}
	return out
}

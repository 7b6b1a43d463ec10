package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML reads a schema description written in YAML. The document uses the
// same attribute names as the JSON form:
//
//	type: record
//	name: Payment
//	fields:
//	  - name: amount
//	    type: {type: bytes, logicalType: decimal, precision: 9, scale: 3}
func ParseYAML(data []byte) (*Schema, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("schema: decoding YAML: %w", err)
	}
	return FromValue(normalizeYAML(v))
}

// normalizeYAML converts map[any]any mappings (non-string keys) into the
// map[string]any shape the parser expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

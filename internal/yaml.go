package internal

import (
	"encoding/json"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

func MarshalYAML(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if ok {
		return b, nil
	}

	return yaml.Marshal(v)
}

func UnmarshalYAML[T any](b []byte) (T, error) {
	var t T
	err := yaml.Unmarshal(b, &t)
	return t, err
}

// MarshalYAMLPreserveKeysOrder marshals a struct to YAML keeping the
// field declaration order. yaml.Marshal alone lowercases field names
// when no tags are set, and a plain map loses the order; round-trip
// through JSON into an ordered map to keep both.
func MarshalYAMLPreserveKeysOrder(v any) ([]byte, error) {
	switch t := v.(type) {
	case map[string]any:
		return yaml.Marshal(t)
	case []byte:
		return t, nil
	default:
		if !isStruct(v) {
			return yaml.Marshal(t)
		}

		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}

		om := orderedmap.New[string, any]()
		if err := json.Unmarshal(b, &om); err != nil {
			return nil, err
		}

		return yaml.Marshal(om)
	}
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

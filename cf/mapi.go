package cf

import (
	"fmt"
	"github.com/pkg/errors"
)

func MapIToMapS(in map[interface{}]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range in {
		result[fmt.Sprintf("%v", k)] = CleanUpMapValue(v)
	}
	return result
}

func CleanUpInterfaceArray(in []interface{}) []interface{} {
	result := make([]interface{}, len(in))
	for i, v := range in {
		result[i] = CleanUpMapValue(v)
	}
	return result
}

func CleanUpMapValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		return CleanUpInterfaceArray(v)

	case map[interface{}]interface{}:
		return MapIToMapS(v)

	case map[string]interface{}:
		for k, sv := range v {
			v[k] = CleanUpMapValue(sv)
		}
		return v

	default:
		return v
	}
}

// Section returns the sub-map stored under key, normalized to string keys. A missing key returns nil without error.
//
func Section(data map[string]interface{}, key string) (map[string]interface{}, error) {
	v, found := data[key]
	if !found || v == nil {
		return nil, nil
	}
	switch m := CleanUpMapValue(v).(type) {
	case map[string]interface{}:
		return m, nil
	default:
		return nil, errors.Errorf("section '%s' is not a map [%T]", key, v)
	}
}

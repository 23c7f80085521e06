package cf

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"reflect"
	"sort"
)

// Load binds the values in data onto the exported fields of the struct pointed to by cf. Keys are matched against
// the `cf` struct tag, falling back to the field name. Keys without a matching field are logged and ignored.
//
func Load(data map[string]interface{}, cf interface{}) error {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() != reflect.Ptr || cfV.IsNil() {
		return errors.Errorf("cf type [%v] not a struct pointer", reflect.TypeOf(cf))
	}
	cfV = cfV.Elem()
	if cfV.Kind() != reflect.Struct {
		return errors.Errorf("cf type [%s] not struct", cfV.Type())
	}
	for i := 0; i < cfV.NumField(); i++ {
		if !cfV.Field(i).CanSet() {
			continue
		}
		key := keyName(cfV.Type().Field(i))
		v, found := data[key]
		if !found {
			continue
		}
		switch cfV.Field(i).Kind() {
		case reflect.Int:
			if j, ok := v.(int); ok {
				cfV.Field(i).SetInt(int64(j))
			} else {
				return mismatch(key, v, cfV.Field(i))
			}

		case reflect.Float64:
			switch f := v.(type) {
			case float64:
				cfV.Field(i).SetFloat(f)
			case int:
				cfV.Field(i).SetFloat(float64(f))
			default:
				return mismatch(key, v, cfV.Field(i))
			}

		case reflect.Bool:
			if b, ok := v.(bool); ok {
				cfV.Field(i).SetBool(b)
			} else {
				return mismatch(key, v, cfV.Field(i))
			}

		case reflect.String:
			if s, ok := v.(string); ok {
				cfV.Field(i).SetString(s)
			} else {
				return mismatch(key, v, cfV.Field(i))
			}

		default:
			return errors.Errorf("unsupported field type [%s]", cfV.Field(i).Type())
		}
	}
	for _, key := range Unknown(data, cf) {
		logrus.Warnf("ignoring unknown config key '%s' for [%s]", key, cfV.Type())
	}
	return nil
}

func Dump(label string, cf interface{}) string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return ""
	}
	out := label + " {\n"
	format := fmt.Sprintf("\t%%-%ds %%v\n", maxKeyLength(cfV))
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanInterface() {
			key := keyName(cfV.Type().Field(i))
			out += fmt.Sprintf(format, key, cfV.Field(i).Interface())
		}
	}
	out += "}\n"
	return out
}

// Keys returns the sorted config keys a struct accepts.
//
func Keys(cf interface{}) []string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanSet() {
			keys = append(keys, keyName(cfV.Type().Field(i)))
		}
	}
	sort.Strings(keys)
	return keys
}

// Unknown returns the sorted keys in data that cf does not accept.
//
func Unknown(data map[string]interface{}, cf interface{}) []string {
	accepted := make(map[string]struct{})
	for _, key := range Keys(cf) {
		accepted[key] = struct{}{}
	}
	var unknown []string
	for key := range data {
		if _, found := accepted[key]; !found {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func mismatch(key string, v interface{}, field reflect.Value) error {
	return errors.Errorf("field '%s' type mismatch, got [%v], expected [%s]", key, reflect.TypeOf(v), field.Type())
}

func keyName(v reflect.StructField) string {
	key := v.Name
	tag := v.Tag.Get("cf")
	if tag != "" {
		key = tag
	}
	return key
}

func maxKeyLength(cfV reflect.Value) int {
	maxKeyLength := 0
	for i := 0; i < cfV.NumField(); i++ {
		key := keyName(cfV.Type().Field(i))
		keyLength := len(key)
		if keyLength > maxKeyLength {
			maxKeyLength = keyLength
		}
	}
	return maxKeyLength
}

package encode

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
)

// Flatten turns a params map into url.Values. Nested maps and slices use
// bracket keys (a[b]=1, list[0]=x); nil values are skipped and booleans
// become "1"/"0".
func Flatten(params map[string]any) url.Values {
	out := make(url.Values, len(params))
	for _, k := range sortedKeys(params) {
		flattenInto(out, k, params[k])
	}
	return out
}

// Form encodes params as an application/x-www-form-urlencoded body.
func Form(params map[string]any) []byte {
	return []byte(Flatten(params).Encode())
}

func flattenInto(out url.Values, key string, v any) {
	switch t := v.(type) {
	case nil:
	case map[string]any:
		for _, k := range sortedKeys(t) {
			flattenInto(out, key+"["+k+"]", t[k])
		}
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			out.Add(key+"["+k+"]", t[k])
		}
	case []any:
		for i, item := range t {
			flattenInto(out, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []string:
		for i, item := range t {
			out.Add(key+"["+strconv.Itoa(i)+"]", item)
		}
	default:
		if m, ok := asMap(v); ok {
			flattenInto(out, key, m)
			return
		}
		if items, ok := asSlice(v); ok {
			flattenInto(out, key, items)
			return
		}
		out.Add(key, Scalar(v))
	}
}

var anyMapType = reflect.TypeFor[map[string]any]()

// asMap converts named map types such as client.Params.
func asMap(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || !rv.Type().ConvertibleTo(anyMapType) {
		return nil, false
	}
	return rv.Convert(anyMapType).Interface().(map[string]any), true
}

// asSlice turns any slice or array ([]int, []map[string]any, [2]string...)
// into []any. Byte slices stay scalars.
func asSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// Scalar renders a single value the way form and query encoders send it.
func Scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package encode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
)

// JSON encodes v as compact JSON text without HTML escaping and without the
// trailing newline json.Encoder adds. Empty or nil maps and slices encode as
// "[]", the shape callee services already receive for "no params".
func JSON(v any) ([]byte, error) {
	if isEmpty(v) {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return false
}

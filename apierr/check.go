package apierr

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field names and the status sentinel are part of the callee convention,
// not configuration.
const (
	fieldSuccess = "success"
	fieldStatus  = "status"
	fieldMessage = "error.message"
	fieldCode    = "error.code"
	statusOK     = 200
)

// Failure is what Check pulled out of a failed body.
type Failure struct {
	Message string
	Code    int
}

// Check applies the success/status heuristic to a raw body.
//
// A body that is not a JSON object passes. Otherwise it fails when "success"
// is present and not truthy, or when "status" is present and not equal to 200.
// Null fields count as absent. Comparisons are loose: "1" is a truthy success
// and "200" is an acceptable status.
func Check(body []byte) (Failure, bool) {
	if !gjson.ValidBytes(body) {
		return Failure{}, false
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Failure{}, false
	}

	failed := false
	if v := doc.Get(fieldSuccess); present(v) && !truthy(v) {
		failed = true
	}
	if v := doc.Get(fieldStatus); present(v) && !looseEquals200(v) {
		failed = true
	}
	if !failed {
		return Failure{}, false
	}

	return Failure{
		Message: messageOf(doc.Get(fieldMessage)),
		Code:    codeOf(doc.Get(fieldCode)),
	}, true
}

// Validate runs Check and, on failure, builds the ServiceError for the call.
func Validate(url string, parameter map[string]any, resp *http.Response, body []byte) error {
	f, failed := Check(body)
	if !failed {
		return nil
	}
	return &ServiceError{
		URL:       url,
		Parameter: parameter,
		Response:  resp,
		Body:      body,
		Message:   f.Message,
		Code:      f.Code,
	}
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != "" && v.Str != "0"
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	}
	return false
}

func looseEquals200(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num == statusOK
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return err == nil && n == statusOK
	}
	return false
}

func messageOf(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return DefaultMessage
}

func codeOf(v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		return int(v.Int())
	case gjson.String:
		// accept numeric strings: "42"
		if i, err := strconv.Atoi(strings.TrimSpace(v.Str)); err == nil {
			return i
		}
	}
	return DefaultCode
}

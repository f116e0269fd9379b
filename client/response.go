package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is a fully read HTTP response. The body is buffered, so every
// accessor can be called any number of times.
type Response struct {
	raw  *http.Response
	body []byte
}

func newResponse(resp *http.Response, body []byte) *Response {
	return &Response{raw: resp, body: body}
}

func (r *Response) StatusCode() int {
	if r == nil || r.raw == nil {
		return 0
	}
	return r.raw.StatusCode
}

func (r *Response) Header() http.Header {
	if r == nil || r.raw == nil {
		return http.Header{}
	}
	return r.raw.Header
}

func (r *Response) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.body
}

func (r *Response) String() string {
	return string(r.Bytes())
}

// JSON decodes the body into generic Go values. It returns nil when the body
// is not valid JSON; use Decode to get the error.
func (r *Response) JSON() any {
	var v any
	if err := json.Unmarshal(r.Bytes(), &v); err != nil {
		return nil
	}
	return v
}

func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Bytes(), v)
}

// Get looks up a gjson path in the body, e.g. "data.items.0.id".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Bytes(), path)
}

// Raw returns the underlying response with a fresh reader over the
// buffered body.
func (r *Response) Raw() *http.Response {
	if r == nil || r.raw == nil {
		return nil
	}
	cp := *r.raw
	cp.Body = io.NopCloser(bytes.NewReader(r.body))
	return &cp
}

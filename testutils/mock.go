// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

// MockTransport returns an httpmock transport reset when t ends. Plug it
// into a builder with client.WithTransport.
func MockTransport(t testing.TB) *httpmock.MockTransport {
	t.Helper()
	mt := httpmock.NewMockTransport()
	t.Cleanup(mt.Reset)
	return mt
}

// JSONResponder answers with body and a JSON Content-Type.
func JSONResponder(status int, body string) httpmock.Responder {
	return httpmock.NewStringResponder(status, body).
		HeaderSet(http.Header{"Content-Type": {"application/json"}})
}

package client_test

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/bodrovis/ternary/client"
	"github.com/bodrovis/ternary/config"
)

func newBuilder(t *testing.T, opts ...client.Option) *client.PendingRequest {
	t.Helper()
	r, err := client.New(opts...)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return r
}

func TestNew_Defaults(t *testing.T) {
	r := newBuilder(t)
	o := r.Options()

	if o.ConnectTimeout != 5*time.Second {
		t.Fatalf("ConnectTimeout = %v, want 5s", o.ConnectTimeout)
	}
	if o.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", o.Timeout)
	}
	if !o.AllowRedirects || !o.Verify {
		t.Fatalf("redirects/verify should default to on: %+v", o)
	}
	if r.BodyFormat() != client.FormatJSON {
		t.Fatalf("BodyFormat = %v, want json", r.BodyFormat())
	}
	if !r.IsCheckResponse() {
		t.Fatal("response checking should default to on")
	}
	if o.Auth.Scheme != client.AuthNone {
		t.Fatalf("Auth = %+v, want none", o.Auth)
	}
}

func TestNew_OptionValidation(t *testing.T) {
	if _, err := client.New(client.WithHTTPClient(nil)); err == nil {
		t.Fatal("expected error for nil http client")
	}
	if _, err := client.New(client.WithTransport(nil)); err == nil {
		t.Fatal("expected error for nil transport")
	}
	if _, err := client.New(client.WithConfig(config.Config{RequestTimeout: -time.Second})); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestBuilder_IsImmutable(t *testing.T) {
	base := newBuilder(t)

	form := base.AsFormParams()
	_ = base.WithHeader("X-Only-On-Copy", "1")
	_ = base.WithoutCheckResponse()
	_ = base.SetRequestTimeout(time.Second)

	if base.BodyFormat() != client.FormatJSON {
		t.Fatalf("base format changed to %v", base.BodyFormat())
	}
	if form.BodyFormat() != client.FormatForm {
		t.Fatalf("copy format = %v, want form_params", form.BodyFormat())
	}
	o := base.Options()
	if o.Header.Get("X-Only-On-Copy") != "" || o.Header.Get("Content-Type") != "" {
		t.Fatalf("base headers leaked: %v", o.Header)
	}
	if !base.IsCheckResponse() || o.Timeout != 30*time.Second {
		t.Fatal("base scalars changed")
	}

	// mutating the returned options does not reach the builder either
	o.Header.Set("X-Mutated", "1")
	if base.Options().Header.Get("X-Mutated") != "" {
		t.Fatal("Options() must return a copy")
	}
}

func TestWithHeaders_Accumulates(t *testing.T) {
	r := newBuilder(t).
		WithHeaders(map[string]string{"X-A": "1"}).
		WithHeaders(map[string]string{"X-A": "2", "X-B": "b"}).
		Accept("application/json").
		Accept("text/plain")

	h := r.Options().Header
	if got := h.Values("X-A"); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("X-A = %v, want [1 2]", got)
	}
	if got := h.Values("Accept"); !slices.Equal(got, []string{"application/json", "text/plain"}) {
		t.Fatalf("Accept = %v", got)
	}
	if h.Get("X-B") != "b" {
		t.Fatalf("X-B = %q", h.Get("X-B"))
	}
}

func TestTimeouts_LastWriteWins(t *testing.T) {
	r := newBuilder(t).
		SetRequestTimeout(time.Second).
		SetRequestTimeout(2 * time.Second).
		SetConnectTimeout(2 * time.Second).
		SetConnectTimeout(9 * time.Second)

	o := r.Options()
	if o.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", o.Timeout)
	}
	if o.ConnectTimeout != 9*time.Second {
		t.Fatalf("ConnectTimeout = %v, want 9s", o.ConnectTimeout)
	}
}

func TestBodyFormat_ContentTypeFollows(t *testing.T) {
	r := newBuilder(t).AsFormParams().AsJSON()
	if r.BodyFormat() != client.FormatJSON {
		t.Fatalf("format = %v", r.BodyFormat())
	}
	if got := r.Options().Header.Values("Content-Type"); !slices.Equal(got, []string{"application/json"}) {
		t.Fatalf("Content-Type = %v", got)
	}

	m := r.AsMultipart()
	if m.BodyFormat() != client.FormatMultipart {
		t.Fatalf("format = %v", m.BodyFormat())
	}
	if ct := m.Options().Header.Get("Content-Type"); ct != "" {
		t.Fatalf("multipart should drop Content-Type, got %q", ct)
	}

	ct := r.ContentType("application/vnd.api+json")
	if ct.BodyFormat() != client.FormatJSON {
		t.Fatal("ContentType must not change the body format")
	}
	if got := ct.Options().Header.Get("Content-Type"); got != "application/vnd.api+json" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestBodyFormat_String(t *testing.T) {
	cases := map[client.BodyFormat]string{
		client.FormatJSON:      "json",
		client.FormatForm:      "form_params",
		client.FormatMultipart: "multipart",
	}
	for f, want := range cases {
		if f.String() != want {
			t.Fatalf("%d.String() = %q, want %q", f, f.String(), want)
		}
	}
}

func TestAuthAndFlags(t *testing.T) {
	r := newBuilder(t).WithBasicAuth("u", "p")
	if a := r.Options().Auth; a.Scheme != client.AuthBasic || a.Username != "u" || a.Password != "p" {
		t.Fatalf("basic auth = %+v", a)
	}
	r = r.WithDigestAuth("d", "q")
	if a := r.Options().Auth; a.Scheme != client.AuthDigest || a.Username != "d" {
		t.Fatalf("digest auth = %+v", a)
	}

	r = r.WithoutRedirecting().WithoutVerifying().WithoutCheckResponse()
	o := r.Options()
	if o.AllowRedirects || o.Verify || r.IsCheckResponse() {
		t.Fatalf("flags not applied: %+v check=%v", o, r.IsCheckResponse())
	}
}

func TestWithQuery_Flattens(t *testing.T) {
	r := newBuilder(t).
		WithQuery(client.Params{"page": 2}).
		WithQuery(client.Params{"filter": map[string]any{"lang": "en"}})

	q := r.Options().Query
	if q.Get("page") != "2" || q.Get("filter[lang]") != "en" {
		t.Fatalf("query = %v", q)
	}
}

func TestWithConfig(t *testing.T) {
	r := newBuilder(t, client.WithConfig(config.Config{
		ConnectTimeout: time.Second,
		UserAgent:      "cfg/1",
		Headers:        map[string]string{"X-Env": "test"},
		NoRedirect:     true,
		Insecure:       true,
	}))

	o := r.Options()
	if o.ConnectTimeout != time.Second || o.Timeout != 30*time.Second {
		t.Fatalf("timeouts = %v/%v", o.ConnectTimeout, o.Timeout)
	}
	if o.Header.Get("User-Agent") != "cfg/1" || o.Header.Get("X-Env") != "test" {
		t.Fatalf("headers = %v", o.Header)
	}
	if o.AllowRedirects || o.Verify {
		t.Fatalf("redirect/verify = %v/%v", o.AllowRedirects, o.Verify)
	}
}

func TestOptions_Merge(t *testing.T) {
	base := client.DefaultOptions()
	base.Header.Set("X-A", "1")
	base.Query.Set("x", "1")

	call := client.Options{
		Header:  http.Header{"X-A": {"2"}},
		Timeout: time.Second,
	}
	call.Query = map[string][]string{"x": {"3"}, "y": {"2"}}

	m := base.Merge(call)
	if got := m.Header.Values("X-A"); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("X-A = %v", got)
	}
	if got := m.Query["x"]; !slices.Equal(got, []string{"1", "3"}) {
		t.Fatalf("x = %v", got)
	}
	if m.Timeout != time.Second || m.ConnectTimeout != 5*time.Second {
		t.Fatalf("timeouts = %v/%v", m.Timeout, m.ConnectTimeout)
	}
	if base.Header.Values("X-A")[0] != "1" || len(base.Header.Values("X-A")) != 1 {
		t.Fatal("Merge must not touch the receiver")
	}
}

package client

import (
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/bodrovis/ternary/internal/encode"
	"github.com/bodrovis/ternary/metrics"
)

// PendingRequest is an immutable request builder. Every configuration method
// returns a new builder and leaves the receiver untouched, so a configured
// builder can be kept as a template and shared between goroutines.
type PendingRequest struct {
	opts          Options
	format        BodyFormat
	checkResponse bool
	interceptors  []Interceptor

	base    http.RoundTripper
	jar     http.CookieJar
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// New returns a fresh builder: JSON body format, response checking on,
// 5s connect timeout and 30s overall timeout.
func New(opts ...Option) (*PendingRequest, error) {
	r := &PendingRequest{
		opts:          DefaultOptions(),
		format:        FormatJSON,
		checkResponse: true,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PendingRequest) clone() *PendingRequest {
	c := *r
	c.opts = r.opts.Clone()
	c.interceptors = slices.Clone(r.interceptors)
	return &c
}

// Options returns a copy of the accumulated options.
func (r *PendingRequest) Options() Options {
	return r.opts.Clone()
}

func (r *PendingRequest) BodyFormat() BodyFormat {
	return r.format
}

func (r *PendingRequest) IsCheckResponse() bool {
	return r.checkResponse
}

func (r *PendingRequest) AsJSON() *PendingRequest {
	c := r.clone()
	c.format = FormatJSON
	c.opts.Header.Set("Content-Type", encode.ContentTypeJSON)
	return c
}

func (r *PendingRequest) AsFormParams() *PendingRequest {
	c := r.clone()
	c.format = FormatForm
	c.opts.Header.Set("Content-Type", encode.ContentTypeForm)
	return c
}

// AsMultipart drops any explicit Content-Type: the boundary is only known
// once the body is encoded.
func (r *PendingRequest) AsMultipart() *PendingRequest {
	c := r.clone()
	c.format = FormatMultipart
	c.opts.Header.Del("Content-Type")
	return c
}

// ContentType replaces the Content-Type header without touching the body format.
func (r *PendingRequest) ContentType(ct string) *PendingRequest {
	c := r.clone()
	c.opts.Header.Set("Content-Type", ct)
	return c
}

func (r *PendingRequest) Accept(value string) *PendingRequest {
	return r.WithHeader("Accept", value)
}

// SetConnectTimeout sets the dial timeout. d must not be negative; zero
// waits indefinitely.
func (r *PendingRequest) SetConnectTimeout(d time.Duration) *PendingRequest {
	c := r.clone()
	c.opts.ConnectTimeout = d
	return c
}

// SetRequestTimeout sets the overall exchange timeout. d must not be
// negative; zero waits indefinitely.
func (r *PendingRequest) SetRequestTimeout(d time.Duration) *PendingRequest {
	c := r.clone()
	c.opts.Timeout = d
	return c
}

func (r *PendingRequest) WithoutRedirecting() *PendingRequest {
	c := r.clone()
	c.opts.AllowRedirects = false
	return c
}

// WithoutVerifying disables TLS certificate verification. Only for trusted
// internal endpoints.
func (r *PendingRequest) WithoutVerifying() *PendingRequest {
	c := r.clone()
	c.opts.Verify = false
	return c
}

// WithHeaders appends headers. Setting the same name twice keeps both
// values and each is sent as its own header line.
func (r *PendingRequest) WithHeaders(headers map[string]string) *PendingRequest {
	c := r.clone()
	for _, k := range sortedKeys(headers) {
		c.opts.Header.Add(k, headers[k])
	}
	return c
}

func (r *PendingRequest) WithHeader(name, value string) *PendingRequest {
	c := r.clone()
	c.opts.Header.Add(name, value)
	return c
}

// WithQuery appends query params sent with every call, next to the URL's
// own query string and the call's params.
func (r *PendingRequest) WithQuery(params Params) *PendingRequest {
	c := r.clone()
	for k, vs := range encode.Flatten(params) {
		c.opts.Query[k] = append(c.opts.Query[k], vs...)
	}
	return c
}

func (r *PendingRequest) WithBasicAuth(username, password string) *PendingRequest {
	c := r.clone()
	c.opts.Auth = Auth{Scheme: AuthBasic, Username: username, Password: password}
	return c
}

// WithDigestAuth answers one Digest challenge per call: the first attempt
// goes out without credentials, a 401 with a Digest challenge is retried
// once with an Authorization header.
func (r *PendingRequest) WithDigestAuth(username, password string) *PendingRequest {
	c := r.clone()
	c.opts.Auth = Auth{Scheme: AuthDigest, Username: username, Password: password}
	return c
}

// WithoutCheckResponse turns off the success/status body check.
func (r *PendingRequest) WithoutCheckResponse() *PendingRequest {
	c := r.clone()
	c.checkResponse = false
	return c
}

// BeforeSending appends an interceptor. Interceptors run in the order they
// were added, right before the request is handed to the transport.
func (r *PendingRequest) BeforeSending(fn Interceptor) *PendingRequest {
	c := r.clone()
	if fn != nil {
		c.interceptors = append(c.interceptors, fn)
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

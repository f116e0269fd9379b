package client

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/bodrovis/ternary/config"
	"github.com/bodrovis/ternary/internal/encode"
	"github.com/bodrovis/ternary/metrics"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultTimeout        = 30 * time.Second
)

// Params is a loosely typed parameter bag used for query strings and bodies.
type Params map[string]any

// File is a multipart upload part, see FileFromPath and FileFromReader.
type File = encode.File

// BodyFormat selects how PUT, PATCH and DELETE params are serialized.
type BodyFormat int

const (
	FormatJSON BodyFormat = iota
	FormatForm
	FormatMultipart
)

// String returns the option-bag key the format is reported under.
func (f BodyFormat) String() string {
	switch f {
	case FormatForm:
		return "form_params"
	case FormatMultipart:
		return "multipart"
	default:
		return "json"
	}
}

type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBasic
	AuthDigest
)

// Auth is the credential variant applied to every call.
type Auth struct {
	Scheme   AuthScheme
	Username string
	Password string
}

// Options is the accumulated request configuration of a builder.
//
// Header and Query merge additively (values are appended); scalar fields
// are overwritten by later writes.
type Options struct {
	ConnectTimeout time.Duration
	Timeout        time.Duration
	AllowRedirects bool
	Verify         bool
	Header         http.Header
	Auth           Auth
	Query          url.Values
}

// DefaultOptions returns the options a fresh builder starts with.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: defaultConnectTimeout,
		Timeout:        defaultTimeout,
		AllowRedirects: true,
		Verify:         true,
		Header:         make(http.Header),
		Query:          make(url.Values),
	}
}

// Clone returns a deep copy; header and query values are not shared.
func (o Options) Clone() Options {
	c := o
	c.Header = o.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Query = cloneValues(o.Query)
	return c
}

// Merge returns o with call-level options laid over it: header and query
// values from call are appended, non-zero scalars from call win.
func (o Options) Merge(call Options) Options {
	m := o.Clone()
	for k, vs := range call.Header {
		for _, v := range vs {
			m.Header.Add(k, v)
		}
	}
	for k, vs := range call.Query {
		m.Query[k] = append(m.Query[k], vs...)
	}
	if call.ConnectTimeout != 0 {
		m.ConnectTimeout = call.ConnectTimeout
	}
	if call.Timeout != 0 {
		m.Timeout = call.Timeout
	}
	if call.Auth.Scheme != AuthNone {
		m.Auth = call.Auth
	}
	return m
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// FileFromPath is a multipart file part read from disk at send time.
func FileFromPath(path string) File {
	return File{Path: path}
}

// FileFromReader is a multipart file part streamed from r.
func FileFromReader(name string, r io.Reader) File {
	return File{Name: name, Reader: r}
}

// Option configures a builder at construction time.
type Option func(*PendingRequest) error

// WithHTTPClient takes the transport (and cookie jar) of hc as the base for
// every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *PendingRequest) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		r.base = hc.Transport
		r.jar = hc.Jar
		return nil
	}
}

// WithTransport sets the base round tripper. *http.Transport values are
// cloned per call so timeouts and TLS policy can be applied; any other
// RoundTripper is used as is.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *PendingRequest) error {
		if rt == nil {
			return errors.New("transport cannot be nil")
		}
		r.base = rt
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *PendingRequest) error {
		r.logger = l
		return nil
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(r *PendingRequest) error {
		r.metrics = m
		return nil
	}
}

// WithConfig applies loaded defaults (timeouts, user agent, extra headers,
// redirect and TLS policy).
func WithConfig(c config.Config) Option {
	return func(r *PendingRequest) error {
		if c.ConnectTimeout < 0 || c.RequestTimeout < 0 {
			return errors.New("timeouts cannot be negative")
		}
		if c.ConnectTimeout > 0 {
			r.opts.ConnectTimeout = c.ConnectTimeout
		}
		if c.RequestTimeout > 0 {
			r.opts.Timeout = c.RequestTimeout
		}
		if c.UserAgent != "" {
			r.opts.Header.Set("User-Agent", c.UserAgent)
		}
		for _, k := range sortedKeys(c.Headers) {
			r.opts.Header.Add(k, c.Headers[k])
		}
		if c.Insecure {
			r.opts.Verify = false
		}
		if c.NoRedirect {
			r.opts.AllowRedirects = false
		}
		return nil
	}
}

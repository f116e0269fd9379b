package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/bodrovis/ternary/apierr"
	"github.com/bodrovis/ternary/internal/digest"
	"github.com/bodrovis/ternary/internal/encode"
	"github.com/bodrovis/ternary/metrics"
)

// CallOptions are the per-call inputs of Send.
type CallOptions struct {
	Query  Params     // appended to the URL's own query string
	Params Params     // body params, encoded per Format
	Format BodyFormat // ignored when Body is set
	Body   []byte     // raw body, sent as is
}

func (r *PendingRequest) Get(ctx context.Context, url string, query Params) (*Response, error) {
	return r.Send(ctx, http.MethodGet, url, CallOptions{Query: query})
}

// Post always sends params as JSON text, whatever the body format is.
func (r *PendingRequest) Post(ctx context.Context, url string, params Params) (*Response, error) {
	body, err := encode.JSON(params)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	return r.Send(ctx, http.MethodPost, url, CallOptions{Body: body})
}

func (r *PendingRequest) Put(ctx context.Context, url string, params Params) (*Response, error) {
	return r.Send(ctx, http.MethodPut, url, CallOptions{Params: params, Format: r.format})
}

func (r *PendingRequest) Patch(ctx context.Context, url string, params Params) (*Response, error) {
	return r.Send(ctx, http.MethodPatch, url, CallOptions{Params: params, Format: r.format})
}

func (r *PendingRequest) Delete(ctx context.Context, url string, params Params) (*Response, error) {
	return r.Send(ctx, http.MethodDelete, url, CallOptions{Params: params, Format: r.format})
}

// Send performs one call: merge options, encode the body, run interceptors,
// execute, then check the body. Transport errors are returned untouched;
// a failed body check yields *apierr.ServiceError.
func (r *PendingRequest) Send(ctx context.Context, method, rawURL string, call CallOptions) (*Response, error) {
	start := time.Now()
	resp, err := r.send(ctx, method, rawURL, call)
	r.observe(method, rawURL, start, resp, err)
	return resp, err
}

func (r *PendingRequest) send(ctx context.Context, method, rawURL string, call CallOptions) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	opts := r.opts.Merge(Options{Query: encode.Flatten(call.Query)})
	query := u.Query()
	for k, vs := range opts.Query {
		query[k] = append(query[k], vs...)
	}
	u.RawQuery = query.Encode()

	body, contentType, parameter, err := encodeBody(method, call)
	if err != nil {
		return nil, err
	}

	out := &OutgoingRequest{
		Method: method,
		URL:    u,
		Header: opts.Header.Clone(),
		Body:   body,
		ctx:    ctx,
	}
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	// multipart always needs its own boundary
	if contentType != "" && (out.Header.Get("Content-Type") == "" || call.Format == FormatMultipart) {
		out.Header.Set("Content-Type", contentType)
	}
	// credentials go in first so interceptors can see or replace them
	if opts.Auth.Scheme == AuthBasic {
		out.Header.Set("Authorization", basicAuth(opts.Auth.Username, opts.Auth.Password))
	}
	runInterceptors(r.interceptors, out)

	req, err := out.build()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	hc, owned := r.httpClient(opts)
	if owned {
		defer hc.CloseIdleConnections()
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if opts.Auth.Scheme == AuthDigest && resp.StatusCode == http.StatusUnauthorized {
		resp, err = r.answerDigest(hc, req, out.Body, resp, opts.Auth)
		if err != nil {
			return nil, err
		}
	}

	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if r.checkResponse {
		if err := apierr.Validate(rawURL, parameter, resp, raw); err != nil {
			return nil, err
		}
	}
	return newResponse(resp, raw), nil
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// encodeBody returns the body bytes, the Content-Type its encoder implies
// and the parameter bag reported in ServiceErrors. GET and HEAD carry no
// body unless one is given explicitly.
func encodeBody(method string, call CallOptions) ([]byte, string, map[string]any, error) {
	parameter := make(map[string]any, 2)
	if call.Query != nil {
		parameter["query"] = call.Query
	}

	if call.Body != nil {
		parameter["body"] = string(call.Body)
		return call.Body, "", parameter, nil
	}
	if call.Params == nil && (method == http.MethodGet || method == http.MethodHead) {
		return nil, "", parameter, nil
	}

	parameter[call.Format.String()] = call.Params
	switch call.Format {
	case FormatForm:
		return encode.Form(call.Params), encode.ContentTypeForm, parameter, nil
	case FormatMultipart:
		body, ct, err := encode.Multipart(call.Params)
		if err != nil {
			return nil, "", nil, fmt.Errorf("encode body: %w", err)
		}
		return body, ct, parameter, nil
	default:
		body, err := encode.JSON(call.Params)
		if err != nil {
			return nil, "", nil, err
		}
		return body, encode.ContentTypeJSON, parameter, nil
	}
}

// httpClient builds the client for one call. owned reports whether the
// transport was cloned for this call and should be released afterwards.
func (r *PendingRequest) httpClient(opts Options) (*http.Client, bool) {
	hc := &http.Client{
		Timeout: opts.Timeout,
		Jar:     r.jar,
	}
	if !opts.AllowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	base, ok := r.base.(*http.Transport)
	switch {
	case r.base == nil:
		base = http.DefaultTransport.(*http.Transport)
	case !ok:
		// custom round trippers (mocks, instrumented stacks) own their dialing and TLS
		hc.Transport = r.base
		return hc, false
	}

	t := base.Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	if !opts.Verify {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = true
	}
	hc.Transport = t
	return hc, true
}

func (r *PendingRequest) answerDigest(hc *http.Client, req *http.Request, body []byte, resp *http.Response, auth Auth) (*http.Response, error) {
	challenge, ok := digest.ParseChallenge(resp.Header.Get("WWW-Authenticate"))
	if !ok {
		return resp, nil
	}
	header, err := challenge.Authorization(req.Method, req.URL.RequestURI(), auth.Username, auth.Password)
	if err != nil {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 8192))
	_ = resp.Body.Close()

	retry := req.Clone(req.Context())
	retry.Body = io.NopCloser(bytes.NewReader(body))
	retry.Header.Set("Authorization", header)
	return hc.Do(retry)
}

func (r *PendingRequest) observe(method, rawURL string, start time.Time, resp *Response, err error) {
	elapsed := time.Since(start)
	outcome := metrics.OutcomeOK

	switch se, isService := apierr.AsServiceError(err); {
	case err == nil:
		r.logger.Debug().
			Str("method", method).
			Str("url", rawURL).
			Int("status", resp.StatusCode()).
			Dur("duration", elapsed).
			Msg("request sent")
	case isService:
		outcome = metrics.OutcomeServiceError
		r.logger.Warn().
			Str("method", method).
			Str("url", rawURL).
			Int("code", se.Code).
			Str("message", se.Message).
			Dur("duration", elapsed).
			Msg("service error")
	default:
		outcome = metrics.OutcomeTransportError
		if !apierr.IsTransport(err) {
			outcome = metrics.OutcomeError
		}
		r.logger.Debug().
			Err(err).
			Str("method", method).
			Str("url", rawURL).
			Dur("duration", elapsed).
			Msg("request failed")
	}

	if r.metrics != nil {
		r.metrics.Observe(method, outcome, elapsed)
	}
}

package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Interceptor inspects or rewrites a request right before it is sent.
type Interceptor func(req *OutgoingRequest)

// OutgoingRequest is the mutable view interceptors receive. Changes to any
// field are seen by later interceptors and by the transmitted request.
type OutgoingRequest struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte

	ctx context.Context
}

// Context is the call's context.
func (o *OutgoingRequest) Context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

func (o *OutgoingRequest) build() (*http.Request, error) {
	if o.URL == nil {
		return nil, errors.New("request url is nil")
	}
	req, err := http.NewRequestWithContext(o.Context(), o.Method, o.URL.String(), bytes.NewReader(o.Body))
	if err != nil {
		return nil, err
	}
	req.Header = o.Header
	return req, nil
}

func runInterceptors(chain []Interceptor, out *OutgoingRequest) {
	for _, fn := range chain {
		fn(out)
	}
}

// RequestID sets header (X-Request-Id when empty) to a fresh UUID unless the
// request already carries one.
func RequestID(header string) Interceptor {
	if header == "" {
		header = "X-Request-Id"
	}
	return func(req *OutgoingRequest) {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, uuid.NewString())
		}
	}
}

func UserAgent(ua string) Interceptor {
	return func(req *OutgoingRequest) {
		req.Header.Set("User-Agent", ua)
	}
}

func BearerToken(token string) Interceptor {
	return func(req *OutgoingRequest) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Throttle blocks until l grants a token.
//
// Interceptors cannot abort a call, so when Wait fails the request is sent
// unthrottled. That happens when the context is cancelled (the transport then
// fails with the context error), when the wait would outlast the context
// deadline, and always for a limiter with burst 0 and a finite rate.
func Throttle(l *rate.Limiter) Interceptor {
	return func(req *OutgoingRequest) {
		_ = l.Wait(req.Context())
	}
}

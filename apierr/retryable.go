package apierr

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsServiceError reports whether err carries a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// AsServiceError unwraps err to a *ServiceError if there is one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTimeout says whether err is a lapsed connect/overall timeout or deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// timeouts from net/http, http2, tls, etc.
	var to interface{ Timeout() bool }
	return errors.As(err, &to) && to.Timeout()
}

// IsTransport says whether err came from the network exchange rather than
// from body validation.
func IsTransport(err error) bool {
	if err == nil || IsServiceError(err) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &netErr) || errors.As(err, &opErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}

// IsRetryable says "worth another shot?" (backoff is still on the caller).
// ServiceErrors are answers from the callee and never retryable here.
func IsRetryable(err error) bool {
	if err == nil || IsServiceError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if IsTimeout(err) {
		return true
	}

	// flaky connections / short reads
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}

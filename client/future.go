package client

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/bodrovis/ternary/internal/encode"
)

// Future is the pending result of a call started with one of the
// *Concurrent methods.
type Future struct {
	done chan struct{}
	resp *Response
	err  error
}

func goFuture(fn func() (*Response, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.resp, f.err = fn()
	}()
	return f
}

// Done is closed once the call has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the call finishes or ctx ends. The call itself keeps
// its own context; cancelling ctx here only stops waiting.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetConcurrent starts a Get in its own goroutine. Options, validation and
// interceptors are the same as for Get.
func (r *PendingRequest) GetConcurrent(ctx context.Context, url string, query Params) *Future {
	return r.SendConcurrent(ctx, http.MethodGet, url, CallOptions{Query: query})
}

// PostConcurrent starts a Post in its own goroutine. The body is JSON text,
// as with Post.
func (r *PendingRequest) PostConcurrent(ctx context.Context, url string, params Params) *Future {
	body, err := encode.JSON(params)
	if err != nil {
		return goFuture(func() (*Response, error) { return nil, err })
	}
	return r.SendConcurrent(ctx, http.MethodPost, url, CallOptions{Body: body})
}

func (r *PendingRequest) SendConcurrent(ctx context.Context, method, url string, call CallOptions) *Future {
	return goFuture(func() (*Response, error) {
		return r.Send(ctx, method, url, call)
	})
}

// WaitAll waits for every future and returns the responses in the same
// order. The first error wins; the other calls still run to completion.
func WaitAll(ctx context.Context, futures ...*Future) ([]*Response, error) {
	out := make([]*Response, len(futures))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			resp, err := f.Wait(gctx)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

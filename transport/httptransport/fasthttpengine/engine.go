// Package fasthttpengine provides an httptransport.Engine backed by
// github.com/valyala/fasthttp.
package fasthttpengine

import (
	"context"
	"time"

	"github.com/dogmatiq/eliterpc/transport/httptransport"
	"github.com/valyala/fasthttp"
)

// defaultClient is the client used by engines that do not specify one.
var defaultClient = &fasthttp.Client{}

// Engine is an httptransport.Engine that uses a fasthttp.Client.
type Engine struct {
	// Client is the fasthttp client used to make requests. If it is nil, a
	// package-level default client is used.
	Client *fasthttp.Client

	// Timeout is the maximum duration of each exchange. Zero means no timeout
	// other than the deadline of the context, if any.
	Timeout time.Duration
}

var _ httptransport.Engine = (*Engine)(nil)

// Do performs req and collects the entire response body.
//
// If ctx is canceled while the request is in flight Do returns ctx.Err()
// immediately. The pooled request and response are released once the
// underlying exchange finishes.
func (e *Engine) Do(
	ctx context.Context,
	req *httptransport.Request,
) (*httptransport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freq := fasthttp.AcquireRequest()
	fres := fasthttp.AcquireResponse()

	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(req.Method)

	for k, values := range req.Header {
		for _, v := range values {
			if k == "Content-Type" {
				freq.Header.SetContentType(v)
			} else {
				freq.Header.Add(k, v)
			}
		}
	}

	if req.Body != nil {
		freq.SetBody(req.Body)
	}

	result := make(chan error, 1)
	go func() {
		result <- e.do(ctx, freq, fres)
	}()

	select {
	case err := <-result:
		defer release(freq, fres)

		if err != nil {
			return nil, err
		}

		// The response is released when this function returns, so the body
		// must be copied.
		return &httptransport.Response{
			StatusCode: fres.StatusCode(),
			Body:       append([]byte{}, fres.Body()...),
		}, nil

	case <-ctx.Done():
		go func() {
			<-result
			release(freq, fres)
		}()

		return nil, ctx.Err()
	}
}

// release returns req and res to their pools.
func release(req *fasthttp.Request, res *fasthttp.Response) {
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(res)
}

// do performs the exchange, honoring both the context deadline and e.Timeout.
func (e *Engine) do(ctx context.Context, req *fasthttp.Request, res *fasthttp.Response) error {
	c := e.Client
	if c == nil {
		c = defaultClient
	}

	deadline, ok := ctx.Deadline()

	if e.Timeout > 0 {
		d := time.Now().Add(e.Timeout)
		if !ok || d.Before(deadline) {
			deadline, ok = d, true
		}
	}

	if ok {
		return c.DoDeadline(req, res, deadline)
	}

	return c.Do(req, res)
}

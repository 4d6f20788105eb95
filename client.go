package eliterpc

import (
	"context"
	"errors"
)

// Client is a generic request/response client.
//
// The payload type T binds the client's protocol and transport together; a
// protocol and transport for different payload types can not be combined.
type Client[T any] struct {
	transport Transport[T]
}

// ClientOption is an option that changes the behavior of a Client.
type ClientOption[T any] func(*clientOptions[T])

type clientOptions[T any] struct {
	middleware []Middleware[T]
}

// WithMiddleware is a ClientOption that wraps the client's transport with the
// given middleware.
//
// Middleware is applied in order, such that the first middleware given is the
// outermost and therefore sees each call first.
func WithMiddleware[T any](mw ...Middleware[T]) ClientOption[T] {
	return func(opts *clientOptions[T]) {
		opts.middleware = append(opts.middleware, mw...)
	}
}

// New returns a new client for the connection described by info.
//
// It constructs the protocol using newProtocol, then constructs the transport
// using newTransport, passing it the connection info and the new protocol.
func New[T any](
	info string,
	newProtocol ProtocolFactory[T],
	newTransport TransportFactory[T],
	options ...ClientOption[T],
) (*Client[T], error) {
	var opts clientOptions[T]
	for _, opt := range options {
		opt(&opts)
	}

	p, err := newProtocol()
	if err != nil {
		return nil, constructionError("protocol", "", err)
	}

	t, err := newTransport(info, p)
	if err != nil {
		return nil, constructionError("transport", info, err)
	}

	for i := len(opts.middleware) - 1; i >= 0; i-- {
		t = opts.middleware[i](t)
	}

	return &Client[T]{t}, nil
}

// Call invokes a method by sending req as the body of a Post request.
func (c *Client[T]) Call(ctx context.Context, method string, req T) (T, error) {
	return c.transport.Call(ctx, PostMethod(method), req)
}

// Do performs a request using an arbitrary transport method.
func (c *Client[T]) Do(ctx context.Context, method TransportMethod, req T) (T, error) {
	return c.transport.Call(ctx, method, req)
}

// Transport returns the client's transport, including any middleware.
func (c *Client[T]) Transport() Transport[T] {
	return c.transport
}

// constructionError returns err as a *ConstructionError, unless it already is
// one.
func constructionError(component, info string, err error) error {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return err
	}

	return &ConstructionError{
		Component: component,
		Info:      info,
		Cause:     err,
	}
}

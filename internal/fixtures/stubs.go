package fixtures

import (
	"context"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/transport/httptransport"
)

// ProtocolStub is a test implementation of the eliterpc.Protocol interface.
//
// By default it uses the method name as the locator suffix, sends the request
// unchanged and decodes every response as the zero value.
type ProtocolStub[T any] struct {
	ToRequestFunc    func(string, T) (string, T, error)
	FromResponseFunc func([]byte, eliterpc.Encoding) (T, error)
	ContentTypeFunc  func() string
}

// ToRequest builds the request for the given method.
func (s *ProtocolStub[T]) ToRequest(method string, req T) (string, T, error) {
	if s.ToRequestFunc != nil {
		return s.ToRequestFunc(method, req)
	}

	return method, req, nil
}

// FromResponse parses response content into a value of type T.
func (s *ProtocolStub[T]) FromResponse(content []byte, enc eliterpc.Encoding) (T, error) {
	if s.FromResponseFunc != nil {
		return s.FromResponseFunc(content, enc)
	}

	var zero T
	return zero, nil
}

// ContentType returns the media type of encoded request bodies.
func (s *ProtocolStub[T]) ContentType() string {
	if s.ContentTypeFunc != nil {
		return s.ContentTypeFunc()
	}

	return "application/json"
}

// TransportStub is a test implementation of the eliterpc.Transport interface.
//
// By default it echoes the request back as the response.
type TransportStub[T any] struct {
	CallFunc func(context.Context, eliterpc.TransportMethod, T) (T, error)
}

// Call returns the response to req.
func (s *TransportStub[T]) Call(ctx context.Context, m eliterpc.TransportMethod, req T) (T, error) {
	if s.CallFunc != nil {
		return s.CallFunc(ctx, m, req)
	}

	return req, nil
}

// EngineStub is a test implementation of the httptransport.Engine interface.
//
// By default it responds to every request with 200 OK and an empty body.
type EngineStub struct {
	DoFunc func(context.Context, *httptransport.Request) (*httptransport.Response, error)
}

// Do performs req.
func (s *EngineStub) Do(ctx context.Context, req *httptransport.Request) (*httptransport.Response, error) {
	if s.DoFunc != nil {
		return s.DoFunc(ctx, req)
	}

	return &httptransport.Response{StatusCode: 200}, nil
}

package eliterpc

import (
	"context"
	"strings"
)

// TransportMethod describes the kind of request a Transport is asked to
// perform.
//
// It is one of Post, Get or Custom. Methods are passed by value; transports
// also accept a non-nil pointer to one of these types.
type TransportMethod interface {
	String() string
	isTransportMethod()
}

// Post is a TransportMethod that sends the encoded request as the body of the
// request.
type Post struct {
	// Target is the method name passed to the protocol, which uses it to build
	// the locator suffix.
	Target string
}

// Get is a TransportMethod that sends no body. The request is expressed
// entirely by the locator suffix built by the protocol.
type Get struct {
	// Target is the method name passed to the protocol, which uses it to build
	// the locator suffix.
	Target string
}

// Custom is a TransportMethod for channels that are not part of a transport's
// native vocabulary, such as a local socket.
type Custom struct {
	// Identifier names the channel.
	Identifier string

	// Target is a locator or request identifier within that channel.
	Target string
}

// PostMethod returns a Post method for the given target.
func PostMethod(target string) TransportMethod {
	return Post{target}
}

// GetMethod returns a Get method for the given target.
func GetMethod(target string) TransportMethod {
	return Get{target}
}

// CustomMethod returns a Custom method.
func CustomMethod(id, target string) TransportMethod {
	return Custom{id, target}
}

func (m Post) String() string   { return describeMethod("POST", m.Target) }
func (m Get) String() string    { return describeMethod("GET", m.Target) }
func (m Custom) String() string { return describeMethod("CUSTOM "+m.Identifier, m.Target) }

func (Post) isTransportMethod()   {}
func (Get) isTransportMethod()    {}
func (Custom) isTransportMethod() {}

// describeMethod returns a human-readable description of a transport method.
func describeMethod(kind, target string) string {
	var w strings.Builder
	w.WriteString(kind)

	if target != "" {
		w.WriteByte(' ')
		writeTarget(&w, target)
	}

	return w.String()
}

// Transport performs a full request/response round trip for payloads of type
// T.
//
// A transport owns the protocol used to encode requests and decode responses.
type Transport[T any] interface {
	// Call encodes req, sends it using the given method and returns the
	// decoded response.
	Call(ctx context.Context, method TransportMethod, req T) (T, error)
}

// TransportFactory constructs a transport bound to the connection described
// by info. The transport takes ownership of p.
type TransportFactory[T any] func(info string, p Protocol[T]) (Transport[T], error)

// Middleware wraps a transport with additional behavior.
type Middleware[T any] func(next Transport[T]) Transport[T]

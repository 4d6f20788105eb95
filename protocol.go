// Package eliterpc is a small request/response client framework that separates
// how a payload is encoded (a Protocol) from how it is moved between processes
// (a Transport).
//
// A Protocol and a Transport are bound together at compile time by sharing the
// same payload type parameter.
package eliterpc

import "fmt"

// Encoding is the text encoding of response content.
type Encoding int

const (
	// UnspecifiedEncoding indicates that the caller has no expectation about
	// the encoding of the response content.
	UnspecifiedEncoding Encoding = iota

	// UTF8 is the UTF-8 text encoding.
	UTF8
)

// String returns the name of the encoding.
func (e Encoding) String() string {
	switch e {
	case UnspecifiedEncoding:
		return "unspecified"
	case UTF8:
		return "utf-8"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Protocol describes how a request value of type T is turned into something
// that can be sent over a transport, and how response content is turned back
// into a value of type T.
//
// T is used for both requests and responses.
type Protocol[T any] interface {
	// ToRequest builds the request for the given method.
	//
	// suffix is appended to the transport's base address. encoded is the value
	// that is actually serialized onto the wire. Transports that do not send a
	// body (such as an HTTP GET) use only the suffix.
	ToRequest(method string, req T) (suffix string, encoded T, err error)

	// FromResponse parses response content into a value of type T.
	//
	// enc is the expected text encoding of the content, if known.
	FromResponse(content []byte, enc Encoding) (T, error)

	// ContentType returns the media type of encoded request bodies.
	ContentType() string
}

// BodyMarshaler is an optional interface implemented by protocols that
// serialize encoded request values themselves.
//
// Transports fall back to JSON for protocols that do not implement it.
type BodyMarshaler[T any] interface {
	MarshalBody(encoded T) ([]byte, error)
}

// ProtocolFactory constructs a new protocol instance.
type ProtocolFactory[T any] func() (Protocol[T], error)

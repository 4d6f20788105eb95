package eliterpc

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrProtocol is matched (using errors.Is()) by errors that occur when a
// protocol encodes a request or decodes a response.
var ErrProtocol = errors.New("protocol error")

// ConstructionError indicates that a protocol or transport could not be
// constructed.
type ConstructionError struct {
	// Component is the name of the component that failed, either "protocol"
	// or "transport".
	Component string

	// Info is the connection info the transport was given, if any.
	Info string

	// Cause is the underlying error.
	Cause error
}

func (e *ConstructionError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("unable to construct %s: %s", e.Component, e.Cause)
	}

	return fmt.Sprintf("unable to construct %s (%s): %s", e.Component, e.Info, e.Cause)
}

// Unwrap returns the cause of e.
func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// EncodingError indicates that a protocol could not encode a request. Nothing
// has been transmitted when this error occurs.
type EncodingError struct {
	Method TransportMethod
	Cause  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unable to encode request (%s): %s", e.Method, e.Cause)
}

// Unwrap returns the cause of e.
func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// Is returns true if target is ErrProtocol.
func (e *EncodingError) Is(target error) bool {
	return target == ErrProtocol
}

// DecodingError indicates that response content could not be decoded into the
// expected type.
type DecodingError struct {
	Method TransportMethod
	Cause  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("unable to decode response (%s): %s", e.Method, e.Cause)
}

// Unwrap returns the cause of e.
func (e *DecodingError) Unwrap() error {
	return e.Cause
}

// Is returns true if target is ErrProtocol.
func (e *DecodingError) Is(target error) bool {
	return target == ErrProtocol
}

// TransportError indicates a network or I/O failure, such as a refused
// connection or a timeout.
type TransportError struct {
	Method TransportMethod
	URL    string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unable to perform request (%s): %s", e.Method, e.Cause)
}

// Unwrap returns the cause of e.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// HTTPStatusError indicates that the server responded, but with an HTTP
// status code other than 200 OK.
type HTTPStatusError struct {
	Method     TransportMethod
	StatusCode int

	// Body is the response body as text. Byte sequences that are not valid
	// UTF-8 are replaced with U+FFFD.
	Body string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf(
		"unexpected HTTP %d (%s) status code (%s)",
		e.StatusCode,
		http.StatusText(e.StatusCode),
		e.Method,
	)

	if e.Body != "" {
		msg += ": " + e.Body
	}

	return msg
}

// UnsupportedMethodError indicates that a transport was asked to perform a
// TransportMethod that it does not implement. No network attempt is made.
type UnsupportedMethodError struct {
	Method TransportMethod
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported transport method (%v)", e.Method)
}

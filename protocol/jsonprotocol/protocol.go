// Package jsonprotocol provides an eliterpc.Protocol that encodes requests and
// decodes responses as JSON.
//
// The payload type may be any type supported by encoding/json. Use any as the
// payload type to work with JSON values as native Go maps, slices and scalars.
package jsonprotocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/internal/jsonx"
)

// MediaType is the media type of JSON request bodies.
const MediaType = "application/json"

// Protocol is an eliterpc.Protocol that uses JSON as its wire format.
type Protocol[T any] struct {
	suffix           func(method string, req T) (string, error)
	unmarshalOptions []jsonx.UnmarshalOption
}

var _ eliterpc.Protocol[any] = (*Protocol[any])(nil)
var _ eliterpc.BodyMarshaler[any] = (*Protocol[any])(nil)

// Option is an option that changes the behavior of a JSON protocol.
type Option[T any] func(*Protocol[T])

// WithSuffix is an Option that changes how the locator suffix is built from a
// method name and request.
//
// By default the method name is used as the suffix.
func WithSuffix[T any](fn func(method string, req T) (string, error)) Option[T] {
	return func(p *Protocol[T]) {
		p.suffix = fn
	}
}

// AllowUnknownFields is an Option that controls whether response objects may
// contain fields that do not exist in the payload type.
//
// Unknown fields are disallowed by default.
func AllowUnknownFields[T any](allow bool) Option[T] {
	return func(p *Protocol[T]) {
		p.unmarshalOptions = append(
			p.unmarshalOptions,
			jsonx.AllowUnknownFields(allow),
		)
	}
}

// New returns a new JSON protocol.
func New[T any](options ...Option[T]) (*Protocol[T], error) {
	p := &Protocol[T]{
		suffix: func(method string, _ T) (string, error) {
			return method, nil
		},
	}

	for _, opt := range options {
		opt(p)
	}

	if p.suffix == nil {
		return nil, errors.New("suffix function must not be nil")
	}

	return p, nil
}

// Factory returns an eliterpc.ProtocolFactory that constructs JSON protocols
// with the given options.
func Factory[T any](options ...Option[T]) eliterpc.ProtocolFactory[T] {
	return func() (eliterpc.Protocol[T], error) {
		p, err := New(options...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// ToRequest returns the locator suffix for the method and req as the value to
// send.
//
// req is not marshaled here. A request that can not be represented as JSON is
// reported by MarshalBody, which is only called for requests that carry a
// body.
func (p *Protocol[T]) ToRequest(method string, req T) (string, T, error) {
	suffix, err := p.suffix(method, req)
	if err != nil {
		var zero T
		return "", zero, fmt.Errorf("unable to build locator suffix: %w", err)
	}

	return suffix, req, nil
}

// MarshalBody returns the JSON representation of an encoded request.
func (p *Protocol[T]) MarshalBody(encoded T) ([]byte, error) {
	data, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal request: %w", err)
	}

	return data, nil
}

// FromResponse parses JSON content into a value of type T.
//
// Empty content is an error; it never produces a zero value.
func (p *Protocol[T]) FromResponse(content []byte, enc eliterpc.Encoding) (T, error) {
	var v T

	switch enc {
	case eliterpc.UnspecifiedEncoding, eliterpc.UTF8:
	default:
		return v, fmt.Errorf("unsupported content encoding (%s)", enc)
	}

	if !utf8.Valid(content) {
		return v, errors.New("content is not valid UTF-8")
	}

	if err := jsonx.Unmarshal(content, &v, p.unmarshalOptions...); err != nil {
		var zero T

		if errors.Is(err, io.EOF) {
			return zero, errors.New("unable to parse JSON content: content is empty")
		}

		if jsonx.IsParseError(err) {
			return zero, fmt.Errorf("unable to parse JSON content: %w", err)
		}

		return zero, err
	}

	return v, nil
}

// ContentType returns MediaType.
func (p *Protocol[T]) ContentType() string {
	return MediaType
}

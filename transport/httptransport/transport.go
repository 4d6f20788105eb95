package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/internal/jsonx"
	"go.uber.org/zap"
)

// Transport is an eliterpc.Transport that sends requests over HTTP.
//
// It is safe for concurrent use provided its Engine is.
type Transport[T any] struct {
	baseURL  string
	protocol eliterpc.Protocol[T]
	engine   Engine
	header   http.Header
	logger   eliterpc.ExchangeLogger
}

var _ eliterpc.Transport[any] = (*Transport[any])(nil)

// New returns a transport that sends requests to the server at baseURL.
//
// baseURL must be an absolute http or https URL. It is used verbatim; each
// request is sent to baseURL + "/" + the protocol's locator suffix.
func New[T any](
	baseURL string,
	p eliterpc.Protocol[T],
	opts ...Option,
) (*Transport[T], error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, &eliterpc.ConstructionError{
			Component: "transport",
			Info:      baseURL,
			Cause:     err,
		}
	}

	if p == nil {
		return nil, &eliterpc.ConstructionError{
			Component: "transport",
			Info:      baseURL,
			Cause:     errors.New("protocol must not be nil"),
		}
	}

	o := options{
		engine: NetHTTPEngine{},
		header: http.Header{},
		logger: eliterpc.ZapExchangeLogger{
			Target: zap.NewNop(),
		},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return &Transport[T]{
		baseURL:  baseURL,
		protocol: p,
		engine:   o.engine,
		header:   o.header,
		logger:   o.logger,
	}, nil
}

// Build returns a transport that sends requests to scheme://host:port.
func Build[T any](
	scheme, host string,
	port uint16,
	p eliterpc.Protocol[T],
	opts ...Option,
) (*Transport[T], error) {
	return New(
		scheme+"://"+net.JoinHostPort(host, strconv.Itoa(int(port))),
		p,
		opts...,
	)
}

// Factory returns an eliterpc.TransportFactory that constructs HTTP
// transports with the given options.
func Factory[T any](opts ...Option) eliterpc.TransportFactory[T] {
	return func(info string, p eliterpc.Protocol[T]) (eliterpc.Transport[T], error) {
		t, err := New(info, p, opts...)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// BaseURL returns the URL that locator suffixes are appended to.
func (t *Transport[T]) BaseURL() string {
	return t.baseURL
}

// Protocol returns the protocol owned by the transport.
func (t *Transport[T]) Protocol() eliterpc.Protocol[T] {
	return t.protocol
}

// Call encodes req, sends it using the given method and returns the decoded
// response.
//
// Pointers to eliterpc.Post and eliterpc.Get are accepted in place of the
// values. It returns an *eliterpc.UnsupportedMethodError for eliterpc.Custom
// methods without making any request.
func (t *Transport[T]) Call(
	ctx context.Context,
	method eliterpc.TransportMethod,
	req T,
) (T, error) {
	var (
		zero T
		body []byte
	)

	method = methodValue(method)

	switch m := method.(type) {
	case eliterpc.Get:
		suffix, _, err := t.protocol.ToRequest(m.Target, req)
		if err != nil {
			return zero, encodingError(method, err)
		}

		body, err = t.exchange(ctx, method, http.MethodGet, suffix, nil)
		if err != nil {
			return zero, err
		}

	case eliterpc.Post:
		suffix, encoded, err := t.protocol.ToRequest(m.Target, req)
		if err != nil {
			return zero, encodingError(method, err)
		}

		data, err := t.marshalBody(encoded)
		if err != nil {
			return zero, encodingError(method, err)
		}

		body, err = t.exchange(ctx, method, http.MethodPost, suffix, data)
		if err != nil {
			return zero, err
		}

	default:
		return zero, &eliterpc.UnsupportedMethodError{Method: method}
	}

	res, err := t.protocol.FromResponse(body, eliterpc.UnspecifiedEncoding)
	if err != nil {
		return zero, decodingError(method, err)
	}

	return res, nil
}

// RawCall performs an HTTP GET request to baseURL + "/" + suffix and returns
// the response body without decoding it.
func (t *Transport[T]) RawCall(ctx context.Context, suffix string) ([]byte, error) {
	return t.exchange(
		ctx,
		eliterpc.GetMethod(suffix),
		http.MethodGet,
		suffix,
		nil,
	)
}

// RawPost performs an HTTP POST request to baseURL + "/" + suffix with the
// given body and returns the response body without decoding it.
//
// The Content-Type header is set from the transport's protocol.
func (t *Transport[T]) RawPost(ctx context.Context, suffix string, body []byte) ([]byte, error) {
	if body == nil {
		body = []byte{}
	}

	return t.exchange(
		ctx,
		eliterpc.PostMethod(suffix),
		http.MethodPost,
		suffix,
		body,
	)
}

// Inner performs an HTTP GET request to t's base URL + "/" + suffix and
// unmarshals the JSON response body into a value of type R, bypassing t's
// protocol.
//
// Fields in the response that do not exist in R are ignored.
func Inner[R, T any](ctx context.Context, t *Transport[T], suffix string) (R, error) {
	var r R

	body, err := t.RawCall(ctx, suffix)
	if err != nil {
		return r, err
	}

	if err := jsonx.Unmarshal(body, &r, jsonx.AllowUnknownFields(true)); err != nil {
		var zero R
		return zero, decodingError(eliterpc.GetMethod(suffix), err)
	}

	return r, nil
}

// exchange performs a single HTTP request and returns the response body if the
// server responded with 200 OK.
func (t *Transport[T]) exchange(
	ctx context.Context,
	method eliterpc.TransportMethod,
	httpMethod, suffix string,
	body []byte,
) ([]byte, error) {
	req := &Request{
		Method: httpMethod,
		URL:    t.baseURL + "/" + suffix,
		Header: t.header.Clone(),
		Body:   body,
	}

	if body != nil {
		req.Header.Set("Content-Type", t.protocol.ContentType())
	}

	res, err := t.engine.Do(ctx, req)
	if err != nil {
		err = &eliterpc.TransportError{
			Method: method,
			URL:    req.URL,
			Cause:  err,
		}
		t.logger.LogError(ctx, method, req.URL, err)
		return nil, err
	}

	// Only an exact 200 is a success. Other 2xx codes are not expected from a
	// request/response exchange.
	if res.StatusCode != http.StatusOK {
		err := &eliterpc.HTTPStatusError{
			Method:     method,
			StatusCode: res.StatusCode,
			Body:       strings.ToValidUTF8(string(res.Body), "\uFFFD"),
		}
		t.logger.LogError(ctx, method, req.URL, err)
		return nil, err
	}

	t.logger.LogExchange(ctx, method, req.URL, res.StatusCode, len(res.Body))

	return res.Body, nil
}

// methodValue returns the method that m points to, if m is a non-nil pointer
// to a Post or Get method. Otherwise it returns m unchanged.
func methodValue(m eliterpc.TransportMethod) eliterpc.TransportMethod {
	switch m := m.(type) {
	case *eliterpc.Post:
		if m != nil {
			return *m
		}
	case *eliterpc.Get:
		if m != nil {
			return *m
		}
	}

	return m
}

// marshalBody serializes an encoded request value into an HTTP request body.
func (t *Transport[T]) marshalBody(encoded T) ([]byte, error) {
	if m, ok := t.protocol.(eliterpc.BodyMarshaler[T]); ok {
		return m.MarshalBody(encoded)
	}

	return json.Marshal(encoded)
}

// validateBaseURL returns an error if u is not an absolute http or https URL.
func validateBaseURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return err
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme (%q), expected http or https", parsed.Scheme)
	}

	if parsed.Host == "" {
		return errors.New("URL must include a host")
	}

	return nil
}

// encodingError returns err as an *eliterpc.EncodingError, unless it already
// is one.
func encodingError(m eliterpc.TransportMethod, err error) error {
	var target *eliterpc.EncodingError
	if errors.As(err, &target) {
		return err
	}

	return &eliterpc.EncodingError{Method: m, Cause: err}
}

// decodingError returns err as an *eliterpc.DecodingError, unless it already
// is one.
func decodingError(m eliterpc.TransportMethod, err error) error {
	var target *eliterpc.DecodingError
	if errors.As(err, &target) {
		return err
	}

	return &eliterpc.DecodingError{Method: m, Cause: err}
}

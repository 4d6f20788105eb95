package httptransport

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Request is an HTTP request to be performed by an Engine.
type Request struct {
	Method string
	URL    string
	Header http.Header

	// Body is the request body. It is nil for requests without a body.
	Body []byte
}

// Response is the result of an HTTP exchange performed by an Engine.
type Response struct {
	StatusCode int
	Body       []byte
}

// Engine performs HTTP exchanges on behalf of a Transport.
//
// Implementations must be safe for concurrent use.
type Engine interface {
	// Do performs req and collects the entire response body.
	//
	// It returns an error only if the exchange itself fails. A response with
	// any status code is not an error.
	Do(ctx context.Context, req *Request) (*Response, error)
}

// defaultHTTPClient is the client used by a NetHTTPEngine without a client.
var defaultHTTPClient = &http.Client{
	CheckRedirect: DisallowRedirects,
}

// DisallowRedirects is an http.Client CheckRedirect function that returns
// redirect responses to the caller instead of following them.
//
// Each call is a single round trip, so a 3xx response is reported as an HTTP
// status error like any other status other than 200 OK.
func DisallowRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// NetHTTPEngine is an Engine that uses Go's native HTTP client.
type NetHTTPEngine struct {
	// Client is the HTTP client used to make requests. If it is nil, a
	// package-level client that does not follow redirects is used.
	//
	// A caller-supplied client keeps its own redirect policy. Set its
	// CheckRedirect field to DisallowRedirects to keep exchanges to a single
	// round trip.
	Client *http.Client
}

var _ Engine = NetHTTPEngine{}

// Do performs req and collects the entire response body.
func (e NetHTTPEngine) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}

	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	hc := e.Client
	if hc == nil {
		hc = defaultHTTPClient
	}

	httpRes, err := hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpRes.Body.Close()

	data, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpRes.StatusCode,
		Body:       data,
	}, nil
}

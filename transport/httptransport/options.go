package httptransport

import (
	"net/http"

	"github.com/dogmatiq/eliterpc"
	"go.uber.org/zap"
)

// Option is an option that changes the behavior of a Transport.
type Option func(*options)

type options struct {
	engine Engine
	header http.Header
	logger eliterpc.ExchangeLogger
}

// WithEngine is an Option that sets the engine used to perform HTTP exchanges.
//
// By default a NetHTTPEngine without a client is used, which does not follow
// redirects.
func WithEngine(e Engine) Option {
	return func(opts *options) {
		opts.engine = e
	}
}

// WithHTTPClient is an Option that configures the transport to use a
// NetHTTPEngine with the given client.
//
// The client's redirect policy is used as-is. See DisallowRedirects.
func WithHTTPClient(c *http.Client) Option {
	return WithEngine(NetHTTPEngine{Client: c})
}

// WithHeader is an Option that adds a header to every request.
//
// The Content-Type header of POST requests is always set from the protocol.
func WithHeader(key, value string) Option {
	return func(opts *options) {
		opts.header.Add(key, value)
	}
}

// WithExchangeLogger is an Option that sets the logger used to log each HTTP
// exchange.
func WithExchangeLogger(l eliterpc.ExchangeLogger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithZapLogger is an Option that configures the transport to use an
// eliterpc.ZapExchangeLogger.
func WithZapLogger(logger *zap.Logger) Option {
	return WithExchangeLogger(
		eliterpc.ZapExchangeLogger{
			Target: logger,
		},
	)
}

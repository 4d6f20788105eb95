package eliterpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExchangeLogger is an interface for logging the HTTP exchanges performed by a
// transport.
type ExchangeLogger interface {
	// LogExchange logs about a request that received a successful response.
	LogExchange(ctx context.Context, method TransportMethod, url string, statusCode, size int)

	// LogError logs about a request that failed.
	LogError(ctx context.Context, method TransportMethod, url string, err error)
}

// ZapExchangeLogger is an implementation of ExchangeLogger using zap.Logger.
type ZapExchangeLogger struct {
	// Target is the destination for log messages.
	Target *zap.Logger
}

var _ ExchangeLogger = (*ZapExchangeLogger)(nil)

// LogExchange logs about a request that received a successful response.
func (l ZapExchangeLogger) LogExchange(
	ctx context.Context,
	method TransportMethod,
	url string,
	statusCode, size int,
) {
	fields := []zap.Field{
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Int("response_size", size),
	}

	l.Target.Info(
		fmt.Sprint(method),
		appendTraceID(ctx, fields)...,
	)
}

// LogError logs about a request that failed.
func (l ZapExchangeLogger) LogError(
	ctx context.Context,
	method TransportMethod,
	url string,
	err error,
) {
	fields := []zap.Field{
		zap.String("url", url),
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		fields = append(fields, zap.Int("status_code", statusErr.StatusCode))
	}

	fields = append(fields, zap.String("error", err.Error()))

	l.Target.Error(
		fmt.Sprint(method),
		appendTraceID(ctx, fields)...,
	)
}

// appendTraceID appends the ID of the trace in ctx to fields, if there is a
// recording span.
func appendTraceID(ctx context.Context, fields []zap.Field) []zap.Field {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	return fields
}

// writeTarget formats a method target for display and writes it to w.
func writeTarget(w *strings.Builder, t string) {
	if !isAlphaNumeric(t) {
		fmt.Fprintf(w, "%#v", t)
	} else {
		w.WriteString(t)
	}
}

// isAlphaNumeric returns true if s consists of only letters and digits.
func isAlphaNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}

	return true
}

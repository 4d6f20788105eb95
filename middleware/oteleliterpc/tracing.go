package oteleliterpc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing is an implementation of eliterpc.Transport that records an
// OpenTelemetry client span for each call.
type Tracing[T any] struct {
	// Next is the next transport in the middleware stack.
	Next eliterpc.Transport[T]

	// TracerProvider is the OpenTelemetry TracerProvider to use for creating
	// spans.
	TracerProvider trace.TracerProvider

	// ServiceName is an application specific service name to use in the span
	// name and attributes.
	//
	// It may be prefixed with a dot-separated "package name", for example
	// "myapp.test.EchoService".
	//
	// It may be empty, in which case it is omitted from the span.
	ServiceName string

	once           sync.Once
	tracer         trace.Tracer
	spanNamePrefix string
	attributes     []attribute.KeyValue
}

var _ eliterpc.Transport[any] = (*Tracing[any])(nil)

// WithTracing is an eliterpc.ClientOption that adds Tracing middleware to a
// client.
func WithTracing[T any](tp trace.TracerProvider, serviceName string) eliterpc.ClientOption[T] {
	return eliterpc.WithMiddleware[T](
		func(next eliterpc.Transport[T]) eliterpc.Transport[T] {
			return &Tracing[T]{
				Next:           next,
				TracerProvider: tp,
				ServiceName:    serviceName,
			}
		},
	)
}

// Call forwards to the next transport within a new client span.
func (t *Tracing[T]) Call(
	ctx context.Context,
	method eliterpc.TransportMethod,
	req T,
) (T, error) {
	t.init()

	ctx, span := t.tracer.Start(
		ctx,
		t.spanNamePrefix+sanitizeSpanName(fmt.Sprint(method)),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.attributes...),
		trace.WithAttributes(methodAttributes(method)...),
	)
	defer span.End()

	res, err := t.Next.Call(ctx, method, req)

	if err != nil {
		span.SetAttributes(errorAttributes(err)...)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, err
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing[T]) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			"github.com/dogmatiq/eliterpc/middleware/oteleliterpc",
			trace.WithInstrumentationVersion(version.Version),
		)

		t.attributes = commonAttributes(t.ServiceName)

		if t.ServiceName != "" {
			t.spanNamePrefix = t.ServiceName + "/"
		}
	})
}

// sanitizeSpanName returns a method description suitable for use in part of a
// span name.
func sanitizeSpanName(n string) string {
	return strings.ReplaceAll(n, "/", "-")
}

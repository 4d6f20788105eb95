package oteleliterpc

import (
	"context"
	"sync"
	"time"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is an implementation of eliterpc.Transport that records
// OpenTelemetry metrics for each call.
type Metrics[T any] struct {
	// Next is the next transport in the middleware stack.
	Next eliterpc.Transport[T]

	// MeterProvider is the OpenTelemetry MeterProvider used to create meters.
	MeterProvider metric.MeterProvider

	// ServiceName is an application specific service name to use in the
	// attributes.
	//
	// It may be empty, in which case it is omitted.
	ServiceName string

	once       sync.Once
	calls      metric.Int64Counter
	errors     metric.Int64Counter
	duration   metric.Float64Histogram
	attributes []attribute.KeyValue
}

var _ eliterpc.Transport[any] = (*Metrics[any])(nil)

// WithMetrics is an eliterpc.ClientOption that adds Metrics middleware to a
// client.
func WithMetrics[T any](mp metric.MeterProvider, serviceName string) eliterpc.ClientOption[T] {
	return eliterpc.WithMiddleware[T](
		func(next eliterpc.Transport[T]) eliterpc.Transport[T] {
			return &Metrics[T]{
				Next:          next,
				MeterProvider: mp,
				ServiceName:   serviceName,
			}
		},
	)
}

// Call forwards to the next transport, recording the call, its duration and
// whether it failed.
func (m *Metrics[T]) Call(
	ctx context.Context,
	method eliterpc.TransportMethod,
	req T,
) (T, error) {
	m.init()

	attrs := methodAttributes(method)
	attrs = append(attrs, m.attributes...)
	attrOption := metric.WithAttributes(attrs...)

	m.calls.Add(ctx, 1, attrOption)

	start := time.Now()
	res, err := m.Next.Call(ctx, method, req)
	elapsed := time.Since(start)

	m.duration.Record(ctx, durationToMillis(elapsed), attrOption)

	if err != nil {
		attrs = append(attrs, errorAttributes(err)...)
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	return res, err
}

// init initializes the meters if they have not already been initialized.
func (m *Metrics[T]) init() {
	m.once.Do(func() {
		meter := m.MeterProvider.Meter(
			"github.com/dogmatiq/eliterpc/middleware/oteleliterpc",
			metric.WithInstrumentationVersion(version.Version),
		)

		var err error
		m.calls, err = meter.Int64Counter(
			"rpc.client.calls",
			metric.WithDescription("The number of calls made."),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			panic(err)
		}

		m.errors, err = meter.Int64Counter(
			"rpc.client.errors",
			metric.WithDescription("The number of calls that resulted in an error."),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			panic(err)
		}

		m.duration, err = meter.Float64Histogram(
			"rpc.client.duration",
			metric.WithDescription("The amount of time it takes to perform a call, including encoding and decoding."),
			metric.WithUnit("ms"),
		)
		if err != nil {
			panic(err)
		}

		m.attributes = commonAttributes(m.ServiceName)
	})
}

// durationToMillis converts a duration to fractional milliseconds.
func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

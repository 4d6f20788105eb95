package oteleliterpc

import (
	"errors"

	"github.com/dogmatiq/eliterpc"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// channelKey is the attribute key that identifies the channel of a custom
// transport method.
const channelKey = attribute.Key("eliterpc.channel")

// commonAttributes returns the OpenTelemetry attributes that are recorded on
// every span and meter.
func commonAttributes(serviceName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemKey.String("dogmatiq/eliterpc"),
	}

	if serviceName != "" {
		attrs = append(
			attrs,
			semconv.RPCServiceKey.String(serviceName),
		)
	}

	return attrs
}

// methodAttributes returns the OpenTelemetry attributes that describe a
// transport method.
func methodAttributes(m eliterpc.TransportMethod) []attribute.KeyValue {
	switch m := m.(type) {
	case *eliterpc.Post:
		if m != nil {
			return methodAttributes(*m)
		}
	case *eliterpc.Get:
		if m != nil {
			return methodAttributes(*m)
		}
	case *eliterpc.Custom:
		if m != nil {
			return methodAttributes(*m)
		}
	case eliterpc.Post:
		return []attribute.KeyValue{
			semconv.RPCMethodKey.String(m.Target),
			semconv.HTTPRequestMethodKey.String("POST"),
		}
	case eliterpc.Get:
		return []attribute.KeyValue{
			semconv.RPCMethodKey.String(m.Target),
			semconv.HTTPRequestMethodKey.String("GET"),
		}
	case eliterpc.Custom:
		return []attribute.KeyValue{
			semconv.RPCMethodKey.String(m.Target),
			channelKey.String(m.Identifier),
		}
	}

	return nil
}

// errorAttributes returns the OpenTelemetry attributes that describe err.
func errorAttributes(err error) []attribute.KeyValue {
	var statusErr *eliterpc.HTTPStatusError
	if errors.As(err, &statusErr) {
		return []attribute.KeyValue{
			semconv.HTTPResponseStatusCodeKey.Int(statusErr.StatusCode),
		}
	}

	return nil
}

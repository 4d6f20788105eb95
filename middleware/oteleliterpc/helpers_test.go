package oteleliterpc_test

import "go.opentelemetry.io/otel/attribute"

// attributeString returns a string attribute.
func attributeString(k, v string) attribute.KeyValue {
	return attribute.Key(k).String(v)
}

// Package kitendpoint adapts eliterpc clients to go-kit endpoints.
package kitendpoint

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dogmatiq/eliterpc"
	"github.com/go-kit/kit/endpoint"
)

// MakeEndpoint returns a go-kit endpoint that performs calls using c with the
// given transport method.
//
// The endpoint's request must be a value of type T, or nil to send the zero
// value of T. Its response is the decoded response of type T.
func MakeEndpoint[T any](
	c *eliterpc.Client[T],
	method eliterpc.TransportMethod,
) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		var req T

		if request != nil {
			r, ok := request.(T)
			if !ok {
				return nil, fmt.Errorf(
					"unable to call endpoint (%s): request must be %s, got %T",
					method,
					reflect.TypeOf((*T)(nil)).Elem(),
					request,
				)
			}
			req = r
		}

		return c.Do(ctx, method, req)
	}
}

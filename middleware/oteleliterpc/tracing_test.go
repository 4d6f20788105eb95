package oteleliterpc_test

import (
	"context"
	"errors"

	"github.com/dogmatiq/eliterpc"
	. "github.com/dogmatiq/eliterpc/internal/fixtures"
	. "github.com/dogmatiq/eliterpc/middleware/oteleliterpc"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var _ = Describe("type Tracing", func() {
	var (
		transport *TransportStub[any]
		recorder  *tracetest.SpanRecorder
		provider  *tracesdk.TracerProvider
		tracing   *Tracing[any]
	)

	BeforeEach(func() {
		transport = &TransportStub[any]{
			CallFunc: func(context.Context, eliterpc.TransportMethod, any) (any, error) {
				return "<response>", nil
			},
		}

		recorder = tracetest.NewSpanRecorder()
		provider = tracesdk.NewTracerProvider(
			tracesdk.WithSpanProcessor(recorder),
		)

		tracing = &Tracing[any]{
			Next:           transport,
			TracerProvider: provider,
			ServiceName:    "package.subpackage.Service",
		}
	})

	Describe("func Call()", func() {
		It("forwards to the next transport", func() {
			transport.CallFunc = func(
				ctx context.Context,
				m eliterpc.TransportMethod,
				req any,
			) (any, error) {
				Expect(trace.SpanFromContext(ctx).IsRecording()).To(BeTrue())
				Expect(m).To(Equal(eliterpc.PostMethod("echo")))
				Expect(req).To(Equal("<request>"))
				return "<response>", nil
			}

			res, err := tracing.Call(context.Background(), eliterpc.PostMethod("echo"), "<request>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(res).To(Equal("<response>"))
		})

		When("the call succeeds", func() {
			It("records a client span", func() {
				tracing.Call(context.Background(), eliterpc.PostMethod("echo"), nil)

				spans := recorder.Ended()
				Expect(spans).To(HaveLen(1))

				span := spans[0]
				Expect(span.Name()).To(Equal("package.subpackage.Service/POST echo"))
				Expect(span.SpanKind()).To(Equal(trace.SpanKindClient))
				Expect(span.Attributes()).To(ConsistOf(
					semconv.RPCSystemKey.String("dogmatiq/eliterpc"),
					semconv.RPCServiceKey.String("package.subpackage.Service"),
					semconv.RPCMethodKey.String("echo"),
					semconv.HTTPRequestMethodKey.String("POST"),
				))
				Expect(span.Status()).To(Equal(
					tracesdk.Status{
						Code: codes.Ok,
					},
				))
				Expect(span.InstrumentationScope()).To(Equal(
					instrumentation.Scope{
						Name:    "github.com/dogmatiq/eliterpc/middleware/oteleliterpc",
						Version: "0.0.0-dev",
					},
				))
			})

			It("sanitizes slashes in the span name", func() {
				tracing.Call(context.Background(), eliterpc.GetMethod("users/123"), nil)

				spans := recorder.Ended()
				Expect(spans).To(HaveLen(1))
				Expect(spans[0].Name()).To(Equal(`package.subpackage.Service/GET "users-123"`))
				Expect(spans[0].Attributes()).To(ContainElement(
					semconv.RPCMethodKey.String("users/123"),
				))
			})

			It("omits the service name if it is empty", func() {
				tracing.ServiceName = ""
				tracing.Call(context.Background(), eliterpc.GetMethod("status"), nil)

				spans := recorder.Ended()
				Expect(spans).To(HaveLen(1))
				Expect(spans[0].Name()).To(Equal("GET status"))
				Expect(spans[0].Attributes()).To(ConsistOf(
					semconv.RPCSystemKey.String("dogmatiq/eliterpc"),
					semconv.RPCMethodKey.String("status"),
					semconv.HTTPRequestMethodKey.String("GET"),
				))
			})
		})

		When("the call fails", func() {
			It("includes error information in the span", func() {
				transport.CallFunc = func(context.Context, eliterpc.TransportMethod, any) (any, error) {
					return nil, errors.New("<error>")
				}

				_, err := tracing.Call(context.Background(), eliterpc.PostMethod("echo"), nil)
				Expect(err).To(MatchError("<error>"))

				spans := recorder.Ended()
				Expect(spans).To(HaveLen(1))

				span := spans[0]
				Expect(span.Status()).To(Equal(
					tracesdk.Status{
						Code:        codes.Error,
						Description: "<error>",
					},
				))
				Expect(span.Events()).To(ConsistOf(
					gstruct.MatchFields(gstruct.IgnoreExtras, gstruct.Fields{
						"Name": Equal(semconv.ExceptionEventName),
						"Attributes": ContainElement(
							semconv.ExceptionMessageKey.String("<error>"),
						),
					}),
				))
			})

			It("includes the HTTP status code of HTTP status errors", func() {
				transport.CallFunc = func(_ context.Context, m eliterpc.TransportMethod, _ any) (any, error) {
					return nil, &eliterpc.HTTPStatusError{
						Method:     m,
						StatusCode: 503,
					}
				}

				tracing.Call(context.Background(), eliterpc.PostMethod("echo"), nil)

				spans := recorder.Ended()
				Expect(spans).To(HaveLen(1))
				Expect(spans[0].Attributes()).To(ContainElement(
					semconv.HTTPResponseStatusCodeKey.Int(503),
				))
			})
		})

		It("describes pointers to methods the same way as the values", func() {
			tracing.Call(context.Background(), &eliterpc.Post{Target: "echo"}, nil)

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(1))
			Expect(spans[0].Name()).To(Equal("package.subpackage.Service/POST echo"))
			Expect(spans[0].Attributes()).To(ContainElements(
				semconv.RPCMethodKey.String("echo"),
				semconv.HTTPRequestMethodKey.String("POST"),
			))
		})

		It("identifies the channel of custom methods", func() {
			tracing.Call(context.Background(), eliterpc.CustomMethod("unix", "socket"), nil)

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(1))
			Expect(spans[0].Attributes()).To(ContainElements(
				semconv.RPCMethodKey.String("socket"),
				attributeString("eliterpc.channel", "unix"),
			))
		})
	})

	Describe("func WithTracing()", func() {
		It("adds tracing middleware to a client", func() {
			client, err := eliterpc.New(
				"<info>",
				func() (eliterpc.Protocol[any], error) {
					return &ProtocolStub[any]{}, nil
				},
				func(string, eliterpc.Protocol[any]) (eliterpc.Transport[any], error) {
					return transport, nil
				},
				WithTracing[any](provider, ""),
			)
			Expect(err).ShouldNot(HaveOccurred())

			_, err = client.Call(context.Background(), "echo", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(recorder.Ended()).To(HaveLen(1))
		})
	})
})

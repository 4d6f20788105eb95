package fasthttpengine_test

import (
	"context"
	"net"
	"time"

	"github.com/dogmatiq/eliterpc"
	"github.com/dogmatiq/eliterpc/protocol/jsonprotocol"
	"github.com/dogmatiq/eliterpc/transport/httptransport"
	. "github.com/dogmatiq/eliterpc/transport/httptransport/fasthttpengine"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// capturedRequest is the information about an HTTP request received by the
// test server.
type capturedRequest struct {
	Method      string
	RequestURI  string
	ContentType string
	APIKey      string
	Body        []byte
}

var _ = Describe("type Engine", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		listener *fasthttputil.InmemoryListener
		handler  fasthttp.RequestHandler
		requests chan capturedRequest
		engine   *Engine
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		requests = make(chan capturedRequest, 10)

		handler = func(rctx *fasthttp.RequestCtx) {
			rctx.SetStatusCode(fasthttp.StatusOK)
			rctx.SetBodyString(`{"ok": true}`)
		}

		listener = fasthttputil.NewInmemoryListener()

		go fasthttp.Serve(listener, func(rctx *fasthttp.RequestCtx) {
			requests <- capturedRequest{
				Method:      string(rctx.Method()),
				RequestURI:  string(rctx.RequestURI()),
				ContentType: string(rctx.Request.Header.ContentType()),
				APIKey:      string(rctx.Request.Header.Peek("X-Api-Key")),
				Body:        append([]byte{}, rctx.PostBody()...),
			}

			handler(rctx)
		})

		engine = &Engine{
			Client: &fasthttp.Client{
				Dial: func(string) (net.Conn, error) {
					return listener.Dial()
				},
			},
		}
	})

	AfterEach(func() {
		listener.Close()
		cancel()
	})

	Describe("func Do()", func() {
		It("performs a POST request with headers and a body", func() {
			res, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "POST",
					URL:    "http://eliterpc.test/echo",
					Header: map[string][]string{
						"Content-Type": {"application/json"},
						"X-Api-Key":    {"<key>"},
					},
					Body: []byte(`{"key": "value"}`),
				},
			)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(res).To(Equal(&httptransport.Response{
				StatusCode: 200,
				Body:       []byte(`{"ok": true}`),
			}))

			var req capturedRequest
			Expect(requests).To(Receive(&req))
			Expect(req.Method).To(Equal("POST"))
			Expect(req.RequestURI).To(Equal("/echo"))
			Expect(req.ContentType).To(Equal("application/json"))
			Expect(req.APIKey).To(Equal("<key>"))
			Expect(req.Body).To(MatchJSON(`{"key": "value"}`))
		})

		It("performs a GET request without a body", func() {
			_, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "GET",
					URL:    "http://eliterpc.test/status?x=1",
				},
			)
			Expect(err).ShouldNot(HaveOccurred())

			var req capturedRequest
			Expect(requests).To(Receive(&req))
			Expect(req.Method).To(Equal("GET"))
			Expect(req.RequestURI).To(Equal("/status?x=1"))
			Expect(req.Body).To(BeEmpty())
		})

		It("returns responses with any status code", func() {
			handler = func(rctx *fasthttp.RequestCtx) {
				rctx.SetStatusCode(fasthttp.StatusNotFound)
				rctx.SetBodyString("<not found>")
			}

			res, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "GET",
					URL:    "http://eliterpc.test/missing",
				},
			)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(404))
			Expect(res.Body).To(Equal([]byte("<not found>")))
		})

		It("returns an error if the context is already canceled", func() {
			cancel()

			_, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "GET",
					URL:    "http://eliterpc.test/status",
				},
			)
			Expect(err).To(MatchError(context.Canceled))
			Expect(requests).NotTo(Receive())
		})

		It("returns an error if the context is canceled while the request is in flight", func() {
			handler = func(rctx *fasthttp.RequestCtx) {
				time.Sleep(1 * time.Second)
			}

			// No deadline, so only cancellation can interrupt the exchange.
			inflight, stop := context.WithCancel(context.Background())
			defer stop()

			time.AfterFunc(50*time.Millisecond, stop)

			start := time.Now()
			_, err := engine.Do(
				inflight,
				&httptransport.Request{
					Method: "GET",
					URL:    "http://eliterpc.test/slow",
				},
			)
			Expect(err).To(MatchError(context.Canceled))
			Expect(time.Since(start)).To(BeNumerically("<", 500*time.Millisecond))
			Expect(requests).To(Receive())
		})

		It("does not follow redirects", func() {
			handler = func(rctx *fasthttp.RequestCtx) {
				rctx.Redirect("/other", fasthttp.StatusFound)
			}

			res, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "POST",
					URL:    "http://eliterpc.test/echo",
					Body:   []byte(`{}`),
				},
			)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(fasthttp.StatusFound))
			Expect(requests).To(Receive())
			Expect(requests).NotTo(Receive())
		})

		It("returns an error if the exchange times out", func() {
			handler = func(rctx *fasthttp.RequestCtx) {
				time.Sleep(200 * time.Millisecond)
			}

			engine.Timeout = 10 * time.Millisecond

			_, err := engine.Do(
				ctx,
				&httptransport.Request{
					Method: "GET",
					URL:    "http://eliterpc.test/slow",
				},
			)
			Expect(err).To(MatchError(fasthttp.ErrTimeout))
		})
	})

	It("can be used as the engine of an HTTP transport", func() {
		protocol, err := jsonprotocol.New[any]()
		Expect(err).ShouldNot(HaveOccurred())

		transport, err := httptransport.New[any](
			"http://eliterpc.test",
			protocol,
			httptransport.WithEngine(engine),
		)
		Expect(err).ShouldNot(HaveOccurred())

		res, err := transport.Call(ctx, eliterpc.PostMethod("echo"), map[string]any{"key": "value"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(res).To(Equal(map[string]any{"ok": true}))

		var req capturedRequest
		Expect(requests).To(Receive(&req))
		Expect(req.RequestURI).To(Equal("/echo"))
		Expect(req.ContentType).To(Equal("application/json"))
	})
})

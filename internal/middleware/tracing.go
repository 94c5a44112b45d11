package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/templui/securefiles/internal/ctxkeys"
)

// Tracing records a client span per request and propagates the trace context
// to the server. A no-op unless a tracer provider has been installed.
// Signed download fetches are not traced: otelhttp records the full URL,
// query string included.
func Tracing(next http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(next,
		otelhttp.WithFilter(traceable),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func traceable(r *http.Request) bool {
	return ctxkeys.Operation(r.Context()) != ctxkeys.OperationFetch
}

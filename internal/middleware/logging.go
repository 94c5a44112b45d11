package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/securefiles/internal/ctxkeys"
)

// RequestLogging logs outbound requests with method, path, status, and duration.
// Query strings are dropped since signed download URLs carry credentials there.
func RequestLogging(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(r)

		attrs := []any{
			"method", r.Method,
			"host", r.URL.Host,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if op := ctxkeys.Operation(r.Context()); op != "" {
			attrs = append(attrs, "op", op)
		}
		if id := ctxkeys.RequestID(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}

		if err != nil {
			slog.Warn("http request failed", append(attrs, "error", err)...)
			return nil, err
		}

		slog.Debug("http request", append(attrs, "status", resp.StatusCode)...)
		return resp, nil
	})
}

package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/templui/securefiles/internal/ctxkeys"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every outbound request with a fresh ID, both as a header
// for server-side correlation and in the context for client-side logs.
// An ID already present in the context is reused.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		id := ctxkeys.RequestID(r.Context())
		if id == "" {
			id = uuid.New().String()
		}

		r = r.Clone(ctxkeys.WithRequestID(r.Context(), id))
		r.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(r)
	})
}

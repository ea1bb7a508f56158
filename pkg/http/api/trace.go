package api

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

const traceIDHeader = "X-Trace-ID"

// TraceID adds the id of the current trace to the response headers.
// It has to run inside the otelhttp handler.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if span.SpanContext().IsValid() {
			w.Header().Set(traceIDHeader, span.SpanContext().TraceID().String())
		}
		next.ServeHTTP(w, r)
	})
}

package middleware_http

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"product-catalog/internal/logger"
)

var tracer = otel.Tracer("HttpMiddleware")

// responseWriter captures status code and response size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// Trace wraps handlers with an OpenTelemetry span, continues an incoming
// trace when the request carries one, exposes the trace id to the client,
// and logs a request/response summary.
func Trace() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
			defer span.End()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())

			start := time.Now()
			next.ServeHTTP(rw, r.WithContext(ctx))
			duration := time.Since(start)

			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			logger.Info(ctx, "HTTP",
				slog.String("http.method", r.Method),
				slog.String("http.path", r.URL.Path),
				slog.String("http.query", r.URL.RawQuery),
				slog.String("http.remote", r.RemoteAddr),
				slog.Int("http.status", rw.statusCode),
				slog.Int64("http.response_bytes", rw.size),
				slog.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

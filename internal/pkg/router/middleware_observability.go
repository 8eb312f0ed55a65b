package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxLoggedBodyBytes caps how much of each body reaches the access log.
// Credentials inside it are masked by the log handler.
const maxLoggedBodyBytes = 32 * 1024

// responseRecorder captures what the handler wrote for the access log and span.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
	body    bytes.Buffer
	capped  bool
	err     error
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	room := maxLoggedBodyBytes - w.body.Len()
	if room < len(p) {
		w.capped = true
	}
	if room > 0 {
		w.body.Write(p[:min(len(p), room)])
	}

	n, err := w.ResponseWriter.Write(p)
	w.written += n
	return n, err
}

// SetError is called by the endpoint adapter with the handler's error.
func (w *responseRecorder) SetError(err error) { w.err = err }

func (w *responseRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	if m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received")); err != nil {
		slog.Error("router: create request counter", "error", err)
	}
	if m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		slog.Error("router: create duration histogram", "error", err)
	}

	return m
}

func (m httpMetrics) record(r *http.Request, elapsed time.Duration, attrs []attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	if m.requests != nil {
		m.requests.Add(r.Context(), 1, opt)
	}
	if m.duration != nil {
		m.duration.Record(r.Context(), float64(elapsed.Milliseconds()), opt)
	}
}

// middlewareObservability opens a server span per request and writes one
// access log line on the way in and one on the way out.
func middlewareObservability(ins instrument.Instrumentation) Middleware {
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)
			base := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
			}

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer), trace.WithAttributes(base...))
			defer span.End()
			r = r.WithContext(ctx)

			slog.InfoContext(ctx, "http request",
				"method", r.Method,
				"path", route,
				"ip", r.RemoteAddr,
				"headers", singleValueHeaders(r.Header),
				"body", bodyForLog(peekBody(r), false),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.code()
			elapsed := time.Since(start)
			attrs := append(base, semconv.HTTPResponseStatusCodeKey.Int(status))

			span.SetAttributes(attrs...)
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			metrics.record(r, elapsed, attrs)

			slog.InfoContext(ctx, "http response",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.written,
				"latency_ms", elapsed.Milliseconds(),
				"body", bodyForLog(rec.body.Bytes(), rec.capped),
			)
		})
	}
}

// peekBody reads up to maxLoggedBodyBytes and puts them back in front of the
// unread remainder so the handler still sees the whole body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	if err != nil {
		slog.DebugContext(r.Context(), "router: peek request body", "error", err)
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))

	return head
}

func bodyForLog(body []byte, capped bool) string {
	switch {
	case len(body) == 0:
		return ""
	case !utf8.Valid(body):
		return "<binary body omitted>"
	case capped:
		return string(body) + "...(truncated)"
	}
	return string(body)
}

func singleValueHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

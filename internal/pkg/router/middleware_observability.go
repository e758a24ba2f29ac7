package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBodyBytes = 32 * 1024

var quietRoutes = map[string]struct{}{"/health": {}}

// maskHeaders hides credentials and anything the masker flags.
func maskHeaders(headers http.Header, masker instrument.Masker) http.Header {
	result := headers.Clone()
	for key := range result {
		if _, sensitive := masker.Value(key, ""); sensitive || strings.EqualFold(key, "Cookie") {
			result.Set(key, "***")
		}
	}
	return result
}

// limitedBuffer keeps at most limit bytes and remembers whether more arrived.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if len(p) > room {
		p = p[:max(room, 0)]
		b.truncated = true
	}
	return b.buf.Write(p)
}

// responseTap records the status, size and a bounded copy of the body
// written by the handler.
type responseTap struct {
	http.ResponseWriter
	status  int
	written int
	body    limitedBuffer
	err     error
}

func newResponseTap(w http.ResponseWriter) *responseTap {
	return &responseTap{ResponseWriter: w, body: limitedBuffer{limit: maxLoggedBodyBytes}}
}

func (t *responseTap) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	_, _ = t.body.Write(p)
	n, err := t.ResponseWriter.Write(p)
	t.written += n
	return n, err
}

// SetError is picked up by the router's error writer.
func (t *responseTap) SetError(err error) { t.err = err }

func (t *responseTap) Status() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

func (t *responseTap) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (t *responseTap) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := t.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func matchedRoutePath(r *http.Request) string {
	pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
	if pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func parseAndMaskBody(contentType string, body []byte, masker instrument.Masker) any {
	if len(body) == 0 {
		return nil
	}

	var jsonBody any
	if err := json.Unmarshal(body, &jsonBody); err == nil {
		return masker.Data(jsonBody)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			form := make(map[string]any, len(values))
			for k, v := range values {
				if len(v) == 1 {
					form[k] = v[0]
				} else {
					form[k] = v
				}
			}
			return masker.Data(form)
		}
	}

	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	return string(body)
}

// peekBody returns up to maxLoggedBodyBytes of the request body and puts
// everything back so the handler still sees the full payload.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

func logRequest(ctx context.Context, r *http.Request, route string, body []byte, masker instrument.Masker) {
	slog.InfoContext(
		ctx,
		"request received",
		"method", r.Method,
		"path", route,
		"uri", r.RequestURI,
		"client_ip", r.RemoteAddr,
		"headers", maskHeaders(r.Header, masker),
		"body", parseAndMaskBody(r.Header.Get("Content-Type"), body, masker),
	)
}

func loggedResponseBody(t *responseTap, masker instrument.Masker) any {
	raw := t.body.buf.Bytes()
	if len(raw) == 0 {
		return nil
	}

	var body any
	var decoded any
	switch {
	case json.Unmarshal(raw, &decoded) == nil:
		body = masker.Data(decoded)
	case utf8.Valid(raw):
		body = string(raw)
	default:
		body = "<binary body omitted>"
	}

	if t.body.truncated {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

func responseLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// middlewareObservability traces and meters every request and logs both
// directions with OTP codes, tokens and phone numbers masked. Routes in
// quietRoutes are traced but not logged.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	var extraMask []string
	if cfg != nil {
		extraMask = cfg.GetArray("instrument.log_mask_fields")
	}
	masker := instrument.NewMasker(extraMask)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requestCounter, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	durationHistogram, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(
				r.Context(),
				r.Method+" "+route,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			_, quiet := quietRoutes[route]
			if !quiet {
				logRequest(ctx, r, route, peekBody(r), masker)
			}

			tap := newResponseTap(w)
			next.ServeHTTP(tap, r.WithContext(ctx))

			status := tap.Status()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if requestCounter != nil {
				requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if durationHistogram != nil {
				durationHistogram.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
			}

			if tap.err != nil {
				span.RecordError(tap.err)
			}
			switch {
			case status >= http.StatusInternalServerError && tap.err != nil:
				span.SetStatus(codes.Error, tap.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}
			span.SetAttributes(append(attrs,
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", tap.written),
			)...)

			if quiet {
				return
			}
			slog.Log(ctx, responseLevel(status), "response sent",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"status", status,
				"bytes", tap.written,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggedResponseBody(tap, masker),
			)
		})
	}
}

package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/merchconfig/internal/logging"
)

// requestInfo is what the logging and metrics middleware record about a request.
type requestInfo struct {
	id        string
	method    string
	path      string
	route     string
	surface   string
	clientIP  string
	userAgent string
	origin    string
}

func newRequestInfo(r *http.Request) requestInfo {
	info := requestInfo{
		id:        requestIDFromRequest(r),
		method:    r.Method,
		path:      r.URL.Path,
		route:     routeLabel(r),
		clientIP:  clientIP(r),
		userAgent: strings.TrimSpace(r.UserAgent()),
		origin:    strings.TrimSpace(r.Header.Get("Origin")),
	}
	switch {
	case strings.HasPrefix(info.path, "/api/v1/admin/"):
		info.surface = "admin"
	case strings.HasPrefix(info.path, "/api/v1/"):
		info.surface = "widget"
	}
	return info
}

func (i requestInfo) logArgs() []any {
	args := []any{
		"request_id", i.id,
		"method", i.method,
		"path", i.path,
		"remote_ip", i.clientIP,
	}
	if i.route != "" {
		args = append(args, "route", i.route)
	}
	if i.surface != "" {
		args = append(args, "surface", i.surface)
	}
	if i.origin != "" {
		args = append(args, "origin", i.origin)
	}
	if i.userAgent != "" {
		args = append(args, "user_agent", i.userAgent)
	}
	return args
}

func (i requestInfo) metricRoute() string {
	if i.route == "" {
		return "unknown"
	}
	return i.route
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestLogger tags every request with an id, stores a request-scoped
// logger in the context and records one completion line plus HTTP metrics.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := newRequestInfo(r)
		w.Header().Set("X-Request-ID", info.id)
		// Downstream middleware reads the id from the request.
		r.Header.Set("X-Request-ID", info.id)

		logger := h.logger.With(info.logArgs()...)
		ctx := logging.WithLogger(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.code()
		elapsed := time.Since(start)

		attrs := []attribute.Builder{
			attribute.String("http.method", info.method),
			attribute.String("http.route", info.metricRoute()),
			attribute.Int("http.status_code", status),
		}
		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.Count("http.server.requests", 1, sentry.WithAttributes(attrs...))
		meter.Distribution("http.server.duration", float64(elapsed.Milliseconds()),
			sentry.WithUnit(sentry.UnitMillisecond),
			sentry.WithAttributes(
				attribute.String("http.method", info.method),
				attribute.String("http.route", info.metricRoute()),
				attribute.String("http.status_class", fmt.Sprintf("%dxx", status/100)),
			),
		)
		if status >= http.StatusInternalServerError {
			meter.Count("http.server.errors", 1, sentry.WithAttributes(attrs...))
		}

		// Health probes and CORS preflights are noise at info level.
		level := logger.Info
		if info.path == "/health" || info.method == http.MethodOptions {
			level = logger.Debug
		}
		level("request completed",
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", rec.bytes,
		)
	})
}

func requestIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return uuid.NewString()
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	if name := route.GetName(); name != "" {
		return name
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return template
}

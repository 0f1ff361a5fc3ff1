package handlers

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/merchconfig/internal/observability"
)

// MetricsContext stores a meter pre-tagged with request attributes so that
// service-level counters (catalog loads, quotes, orders) carry them too.
func (h *Handlers) MetricsContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		info := newRequestInfo(r)

		attrs := []attribute.Builder{
			attribute.String("http.request_id", info.id),
			attribute.String("http.method", info.method),
			attribute.String("http.route", info.metricRoute()),
			attribute.String("network.client.ip", info.clientIP),
		}
		if info.surface != "" {
			attrs = append(attrs, attribute.String("api.surface", info.surface))
		}
		if info.origin != "" {
			attrs = append(attrs, attribute.String("http.origin", info.origin))
		}

		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.SetAttributes(attrs...)
		next.ServeHTTP(w, r.WithContext(observability.WithMeter(ctx, meter)))
	})
}

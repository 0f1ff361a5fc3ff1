package observability

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

type meterKey struct{}

// WithMeter stores a request-scoped meter in ctx. A nil meter is replaced by
// a fresh one bound to ctx.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the request meter, or a new meter when the call
// did not come through the HTTP middleware (CLI, background reloads).
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter, ok := ctx.Value(meterKey{}).(sentry.Meter); ok && meter != nil {
		return meter.WithCtx(ctx)
	}
	return sentry.NewMeter(ctx).WithCtx(ctx)
}

// CountFailure increments name with a "reason" attribute.
func CountFailure(ctx context.Context, name, reason string) {
	MeterFromContext(ctx).Count(name, 1, sentry.WithAttributes(
		attribute.String("reason", reason),
	))
}

package services

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/logging"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/observability"
)

// SubmitOrder replays sel, freezes it into a new order and persists it. The
// manager notification is best effort and never fails the submission.
func (s *ConfiguratorService) SubmitOrder(ctx context.Context, sel catalog.Selection, customer configurator.CustomerInput) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.configurator.submit_order",
		sentry.WithOpName("service.configurator"),
		sentry.WithDescription("SubmitOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		observability.CountFailure(ctx, "order.submission.failed", reason)
	}
	meter.Count("order.submission.received", 1)

	snapshot, err := s.Catalog(ctx)
	if err != nil {
		recordFailure("catalog_unavailable")
		return nil, err
	}

	ctrl := s.newController(snapshot)
	ctrl.ApplySelection(sel)

	order, err := ctrl.Submit(ctx, customer)
	if err != nil {
		var submitErr *configurator.SubmissionError
		switch {
		case errors.Is(err, configurator.ErrInvalidCustomer):
			recordFailure("invalid_customer")
		case errors.Is(err, configurator.ErrNotOrderable):
			recordFailure("not_orderable")
		case errors.As(err, &submitErr):
			recordFailure("persist_failed")
			logger.Error("failed to persist order", "error", err)
		default:
			recordFailure("unknown")
		}
		return nil, err
	}

	meter.Count("order.submission.created", 1)
	ctx = logging.With(ctx, s.logger, "order_id", order.ID)
	logger = s.loggerFromContext(ctx)
	logger.Info("order submitted",
		"category_id", order.Configuration.CategoryID,
		"quantity", order.Quantity,
		"calculated_price", order.CalculatedPrice,
	)

	if err := s.notifier.NotifyNewOrder(ctx, snapshot, order); err != nil {
		observability.CountFailure(ctx, "order.submission.side_effect_failed", "notification_failed")
		logger.Warn("failed to send new order notification", "error", err)
	}
	return order, nil
}

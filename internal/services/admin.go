package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/logging"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/observability"
)

var (
	ErrInvalidPrice    = errors.New("price must be a non-negative whole number")
	ErrInvalidArgument = errors.New("invalid argument")
)

type adminCatalogStore interface {
	UpsertCustomizationPrice(ctx context.Context, categoryID, customizationID, price int64) error
	DeleteCustomizationPrice(ctx context.Context, categoryID, customizationID int64) error
	UpsertVariantPrice(ctx context.Context, categoryID, fitID, materialID, price int64) error
	DeleteVariant(ctx context.Context, categoryID, fitID, materialID int64) error
	CopyCategoryBindings(ctx context.Context, from, to int64) error
}

type adminOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) error
}

type catalogSource interface {
	Catalog(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// AdminService backs the manager's order list and catalog price editing.
type AdminService struct {
	catalogStore adminCatalogStore
	orderStore   adminOrderStore
	catalog      catalogSource
	logger       *slog.Logger
}

func NewAdminService(catalogStore adminCatalogStore, orderStore adminOrderStore, source catalogSource, logger *slog.Logger) *AdminService {
	return &AdminService{
		catalogStore: catalogStore,
		orderStore:   orderStore,
		catalog:      source,
		logger:       logging.Component(logger, "admin"),
	}
}

func (s *AdminService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// OrderView is an order with its configuration spelled out.
type OrderView struct {
	*models.Order
	Lines []catalog.ConfigLine `json:"lines"`
}

// ListOrders returns the newest orders, optionally filtered by status. When
// the catalog cannot be loaded, configurations are described by id only.
func (s *AdminService) ListOrders(ctx context.Context, status string, limit int) ([]OrderView, error) {
	span := sentry.StartSpan(
		ctx,
		"service.admin.list_orders",
		sentry.WithOpName("service.admin"),
		sentry.WithDescription("ListOrders"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	filter := models.OrderStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}

	orders, err := s.orderStore.List(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	snapshot := s.describeSnapshot(ctx)
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, OrderView{
			Order: order,
			Lines: catalog.DescribeConfiguration(snapshot, order.Configuration),
		})
	}
	return views, nil
}

// UpdateOrderStatus moves an order along its lifecycle and returns it.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderView, error) {
	span := sentry.StartSpan(
		ctx,
		"service.admin.update_order_status",
		sentry.WithOpName("service.admin"),
		sentry.WithDescription("UpdateOrderStatus"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	next := models.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}

	meter := observability.MeterFromContext(ctx)
	if err := s.orderStore.UpdateStatus(ctx, orderID, next); err != nil {
		meter.Count("admin.order_status.failed", 1, sentry.WithAttributes(
			attribute.String("status", string(next)),
		))
		return nil, err
	}
	meter.Count("admin.order_status.updated", 1, sentry.WithAttributes(
		attribute.String("status", string(next)),
	))
	s.loggerFromContext(ctx).Info("order status updated", "order_id", orderID, "status", next)

	order, err := s.orderStore.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &OrderView{
		Order: order,
		Lines: catalog.DescribeConfiguration(s.describeSnapshot(ctx), order.Configuration),
	}, nil
}

// SetCustomizationPrice sets the category's override for a customization.
// An empty value removes the override so the base price applies again.
func (s *AdminService) SetCustomizationPrice(ctx context.Context, categoryID, customizationID int64, raw string) error {
	if categoryID <= 0 || customizationID <= 0 {
		return fmt.Errorf("%w: category and customization are required", ErrInvalidArgument)
	}
	price, remove, err := ParsePrice(raw)
	if err != nil {
		return err
	}

	if remove {
		err = s.catalogStore.DeleteCustomizationPrice(ctx, categoryID, customizationID)
	} else {
		err = s.catalogStore.UpsertCustomizationPrice(ctx, categoryID, customizationID, price)
	}
	if err != nil {
		return fmt.Errorf("failed to save customization price: %w", err)
	}

	s.loggerFromContext(ctx).Info("customization price saved",
		"category_id", categoryID,
		"customization_id", customizationID,
		"removed", remove,
	)
	s.refresh(ctx)
	return nil
}

// SetVariantPrice sets the base price of a (category, fit, material)
// variant. An empty value removes the variant.
func (s *AdminService) SetVariantPrice(ctx context.Context, categoryID, fitID, materialID int64, raw string) error {
	if categoryID <= 0 || fitID <= 0 || materialID <= 0 {
		return fmt.Errorf("%w: category, fit and material are required", ErrInvalidArgument)
	}
	price, remove, err := ParsePrice(raw)
	if err != nil {
		return err
	}

	if remove {
		err = s.catalogStore.DeleteVariant(ctx, categoryID, fitID, materialID)
	} else {
		err = s.catalogStore.UpsertVariantPrice(ctx, categoryID, fitID, materialID, price)
	}
	if err != nil {
		return fmt.Errorf("failed to save variant price: %w", err)
	}

	s.loggerFromContext(ctx).Info("variant price saved",
		"category_id", categoryID,
		"fit_id", fitID,
		"material_id", materialID,
		"removed", remove,
	)
	s.refresh(ctx)
	return nil
}

// CopyCategoryBindings replaces the bindings of category to with those of from.
func (s *AdminService) CopyCategoryBindings(ctx context.Context, from, to int64) error {
	if from <= 0 || to <= 0 {
		return fmt.Errorf("%w: source and target categories are required", ErrInvalidArgument)
	}
	if err := s.catalogStore.CopyCategoryBindings(ctx, from, to); err != nil {
		return fmt.Errorf("failed to copy category bindings: %w", err)
	}
	s.loggerFromContext(ctx).Info("category bindings copied", "from", from, "to", to)
	s.refresh(ctx)
	return nil
}

// RefreshCatalog reloads the catalog on demand.
func (s *AdminService) RefreshCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("catalog source is not configured")
	}
	return s.catalog.Refresh(ctx)
}

// ParsePrice reads an admin price cell. Blank input means remove.
func ParsePrice(raw string) (price int64, remove bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, true, nil
	}
	price, err = strconv.ParseInt(trimmed, 10, 64)
	if err != nil || price < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return price, false, nil
}

func (s *AdminService) refresh(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if _, err := s.catalog.Refresh(ctx); err != nil {
		s.loggerFromContext(ctx).Warn("failed to refresh catalog after admin change", "error", err)
	}
}

func (s *AdminService) describeSnapshot(ctx context.Context) *catalog.Snapshot {
	if s.catalog == nil {
		return nil
	}
	snapshot, err := s.catalog.Catalog(ctx)
	if err != nil {
		s.loggerFromContext(ctx).Warn("describing orders without catalog", "error", err)
		return nil
	}
	return snapshot
}

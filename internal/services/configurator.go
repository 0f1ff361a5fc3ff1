package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/gitshopapp/merchconfig/internal/cache"
	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/logging"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/observability"
	"github.com/gitshopapp/merchconfig/internal/pricing"
)

const DefaultCatalogTTL = 60 * time.Second

type ConfiguratorConfig struct {
	CatalogTTL                  time.Duration
	ResetPrintsOnCategoryChange bool
}

// ConfiguratorService serves the widget: it keeps the current catalog
// snapshot and runs stateless configuration sessions against it.
type ConfiguratorService struct {
	loader         *catalog.Loader
	holder         *catalog.Holder
	cache          cache.Provider
	orders         configurator.OrderSubmitter
	notifier       OrderNotifier
	ttl            time.Duration
	storeOpts      []catalog.Option
	controllerOpts []configurator.Option
	loads          singleflight.Group
	now            func() time.Time
	logger         *slog.Logger
}

func NewConfiguratorService(
	loader *catalog.Loader,
	cacheProvider cache.Provider,
	orders configurator.OrderSubmitter,
	notifier OrderNotifier,
	cfg ConfiguratorConfig,
	logger *slog.Logger,
) *ConfiguratorService {
	if notifier == nil {
		notifier = noopOrderNotifier{}
	}
	ttl := cfg.CatalogTTL
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	s := &ConfiguratorService{
		loader:    loader,
		cache:     cacheProvider,
		orders:    orders,
		notifier:  notifier,
		ttl:       ttl,
		storeOpts: []catalog.Option{catalog.WithResetPrintsOnCategoryChange(cfg.ResetPrintsOnCategoryChange)},
		now:       time.Now,
		logger:    logging.Component(logger, "configurator"),
	}
	s.holder = catalog.NewHolderWithClock(func() time.Time { return s.now() })
	return s
}

func (s *ConfiguratorService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Catalog returns the current snapshot, reloading it once it is older than
// the configured TTL. Concurrent reloads are collapsed into one. When a
// reload fails the previous snapshot keeps being served.
func (s *ConfiguratorService) Catalog(ctx context.Context) (*catalog.Snapshot, error) {
	snapshot, loadedAt := s.holder.Current()
	if snapshot != nil && s.now().Sub(loadedAt) < s.ttl {
		return snapshot, nil
	}

	fresh, err := s.reload(ctx, false)
	if err != nil {
		if snapshot != nil {
			s.loggerFromContext(ctx).Warn("catalog reload failed, serving previous snapshot", "error", err)
			return snapshot, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh drops the cached catalog and loads it from the repository.
func (s *ConfiguratorService) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	s.holder.Invalidate()
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.CatalogKey()); err != nil {
			s.loggerFromContext(ctx).Warn("failed to delete cached catalog", "error", err)
		}
	}
	return s.reload(ctx, true)
}

func (s *ConfiguratorService) reload(ctx context.Context, skipCache bool) (*catalog.Snapshot, error) {
	key := "catalog"
	if skipCache {
		key = "catalog:refresh"
	}
	result, err, _ := s.loads.Do(key, func() (any, error) {
		return s.load(ctx, skipCache)
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog.Snapshot), nil
}

func (s *ConfiguratorService) load(ctx context.Context, skipCache bool) (*catalog.Snapshot, error) {
	span := sentry.StartSpan(
		ctx,
		"service.configurator.load_catalog",
		sentry.WithOpName("service.configurator"),
		sentry.WithDescription("LoadCatalog"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	ticket := s.holder.Begin()

	if !skipCache {
		if snapshot, ok := s.cachedSnapshot(ctx); ok {
			meter.Count("catalog.cache.hit", 1)
			return s.commit(ticket, snapshot), nil
		}
		meter.Count("catalog.cache.miss", 1)
	}

	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		reason := "error"
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) && loadErr.Timeout() {
			reason = "timeout"
		}
		observability.CountFailure(ctx, "catalog.load.failed", reason)
		span.Status = sentry.SpanStatusUnavailable
		logger.Error("failed to load catalog", "error", err, "reason", reason)
		return nil, err
	}
	meter.Count("catalog.load.succeeded", 1)

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, cache.CatalogKey(), snapshot.Data(), s.ttl); err != nil {
			logger.Warn("failed to cache catalog", "error", err)
		}
	}
	return s.commit(ticket, snapshot), nil
}

func (s *ConfiguratorService) cachedSnapshot(ctx context.Context) (*catalog.Snapshot, bool) {
	if s.cache == nil {
		return nil, false
	}
	var data catalog.Data
	if err := cache.GetJSON(ctx, s.cache, cache.CatalogKey(), &data); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.loggerFromContext(ctx).Warn("ignoring unreadable cached catalog", "error", err)
		}
		return nil, false
	}
	return catalog.NewSnapshot(data), true
}

// commit installs snapshot unless a newer load already has, in which case
// the newer snapshot is returned.
func (s *ConfiguratorService) commit(ticket uint64, snapshot *catalog.Snapshot) *catalog.Snapshot {
	if s.holder.Commit(ticket, snapshot) {
		return snapshot
	}
	if current, _ := s.holder.Current(); current != nil {
		return current
	}
	return snapshot
}

type CategoryOption struct {
	models.Category
	Orderable bool `json:"orderable"`
}

type ColorOption struct {
	models.ColorPaletteEntry
	VeryDark bool `json:"very_dark"`
}

type CustomizationOption struct {
	models.Customization
	EffectivePrice int64 `json:"effective_price"`
}

// Options lists what the customer may pick at each step of the selection.
type Options struct {
	Categories     []CategoryOption      `json:"categories"`
	Fits           []models.Fit          `json:"fits"`
	Materials      []models.Material     `json:"materials"`
	Colors         []ColorOption         `json:"colors"`
	PrintMethods   []models.PrintMethod  `json:"print_methods"`
	Customizations []CustomizationOption `json:"customizations"`
}

type QuoteResult struct {
	Selection  catalog.Selection `json:"selection"`
	Options    Options           `json:"options"`
	Quote      pricing.Quote     `json:"quote"`
	CanSubmit  bool              `json:"can_submit"`
	SmallBatch bool              `json:"small_batch"`
}

// Quote replays sel against the current catalog and prices the result.
func (s *ConfiguratorService) Quote(ctx context.Context, sel catalog.Selection) (*QuoteResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.configurator.quote",
		sentry.WithOpName("service.configurator"),
		sentry.WithDescription("Quote"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	snapshot, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	ctrl := s.newController(snapshot)
	ctrl.ApplySelection(sel)

	result := describeSession(ctrl)
	observability.MeterFromContext(ctx).Count("configurator.quote.calculated", 1, sentry.WithAttributes(
		attribute.String("orderable", strconv.FormatBool(result.CanSubmit)),
	))
	return result, nil
}

func (s *ConfiguratorService) newController(snapshot *catalog.Snapshot) *configurator.Controller {
	store := catalog.NewStore(snapshot, s.storeOpts...)
	return configurator.NewController(store, s.orders, s.controllerOpts...)
}

func describeSession(ctrl *configurator.Controller) *QuoteResult {
	store := ctrl.Store()
	snapshot, st := store.View()

	categories := snapshot.Categories()
	categoryOptions := make([]CategoryOption, 0, len(categories))
	for _, category := range categories {
		categoryOptions = append(categoryOptions, CategoryOption{
			Category:  category,
			Orderable: snapshot.CategoryOrderable(category.ID),
		})
	}

	colors := store.AvailableColors()
	colorOptions := make([]ColorOption, 0, len(colors))
	for _, color := range colors {
		colorOptions = append(colorOptions, ColorOption{
			ColorPaletteEntry: color,
			VeryDark:          models.IsVeryDarkColor(color.HexCode),
		})
	}

	customizations := store.AvailableCustomizations()
	customizationOptions := make([]CustomizationOption, 0, len(customizations))
	for _, customization := range customizations {
		customizationOptions = append(customizationOptions, CustomizationOption{
			Customization:  customization,
			EffectivePrice: snapshot.CustomizationsPrice(st.CategoryID, []int64{customization.ID}),
		})
	}

	return &QuoteResult{
		Selection: st,
		Options: Options{
			Categories:     categoryOptions,
			Fits:           store.AvailableFits(),
			Materials:      store.AvailableMaterials(),
			Colors:         colorOptions,
			PrintMethods:   store.AvailablePrintMethods(),
			Customizations: customizationOptions,
		},
		Quote:      ctrl.Quote(),
		CanSubmit:  ctrl.CanSubmit(),
		SmallBatch: pricing.SmallBatch(st.Quantity),
	}
}

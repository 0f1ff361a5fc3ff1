package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/merchconfig/internal/cache"
	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/config"
	"github.com/gitshopapp/merchconfig/internal/db"
	"github.com/gitshopapp/merchconfig/internal/email"
	"github.com/gitshopapp/merchconfig/internal/handlers"
	"github.com/gitshopapp/merchconfig/internal/logging"
	"github.com/gitshopapp/merchconfig/internal/services"
)

const sentryFlushTimeout = 2 * time.Second

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Configurator  *services.ConfiguratorService
	Handlers      *handlers.Handlers

	closeLog func() error
	sentry   bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the application from an already loaded config.
func NewWithConfig(cfg *config.Config) (*App, error) {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, closeLog: closeLog}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		}); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		a.sentry = true
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	a.DB, err = db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := db.Migrate(startupCtx, a.DB); err != nil {
		a.Close()
		return nil, err
	}

	a.CacheProvider, err = cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	notifier, err := newOrderNotifier(startupCtx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	catalogStore := db.NewCatalogStore(a.DB)
	orderStore := db.NewOrderStore(a.DB)
	loader := catalog.NewLoader(catalogStore, catalog.NewValidator(), cfg.CatalogLoadTimeout)

	a.Configurator = services.NewConfiguratorService(
		loader,
		a.CacheProvider,
		orderStore,
		notifier,
		services.ConfiguratorConfig{
			CatalogTTL:                  cfg.CatalogCacheTTL,
			ResetPrintsOnCategoryChange: cfg.ResetPrintsOnCategoryChange,
		},
		logger,
	)
	adminService := services.NewAdminService(
		catalogStore,
		orderStore,
		a.Configurator,
		logger,
	)

	a.Handlers, err = handlers.New(handlers.Dependencies{
		Config:              cfg,
		DB:                  a.DB,
		ConfiguratorService: a.Configurator,
		AdminService:        adminService,
		Logger:              logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Warm the catalog so the first widget request does not pay for the load.
	if _, err := a.Configurator.Catalog(startupCtx); err != nil {
		logger.Warn("initial catalog load failed, will retry on demand", "error", err)
	}

	return a, nil
}

// newOrderNotifier returns nil when email is not configured. A rejected API
// key is logged rather than fatal; orders are stored either way.
func newOrderNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.OrderNotifier, error) {
	if !cfg.EmailEnabled() {
		return nil, nil
	}
	provider, err := email.NewProvider(email.Config{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.EmailAPIKey,
		From:     cfg.EmailFrom,
		Domain:   cfg.EmailDomain,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	if err := provider.ValidateAPIKey(ctx); err != nil {
		logger.Warn("email provider rejected API key, order notifications may fail",
			"provider", cfg.EmailProvider, "error", err)
	}
	notifier, err := services.NewEmailOrderNotifier(provider, cfg.OrderNotifyEmail, cfg.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize order notifier: %w", err)
	}
	return notifier, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentry {
		sentry.Flush(sentryFlushTimeout)
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil && a.Logger != nil {
			a.Logger.Warn("failed to close log file", "error", err)
		}
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}

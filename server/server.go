package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/merchconfig/internal/config"
	"github.com/gitshopapp/merchconfig/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	var handler http.Handler = s.buildRouter()
	if cfg.SentryDSN != "" {
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(handler)
	}

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve runs the server until ctx is done, then shuts it down gracefully
// within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, shutdownTimeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Run()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Close(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.MetricsContext)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Widget routes - shared access key, callable cross-origin
	widget := api.NewRoute().Subrouter()
	widget.Use(h.CORS)
	widget.Use(h.RequireAccessKey)
	widget.HandleFunc("/catalog", h.GetCatalog).Methods("GET", "OPTIONS").Name("widget.catalog")
	widget.HandleFunc("/quote", h.PostQuote).Methods("POST", "OPTIONS").Name("widget.quote")
	widget.HandleFunc("/orders", h.PostOrder).Methods("POST", "OPTIONS").Name("widget.orders")

	// Admin routes - bearer token
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.RequireAdminToken)
	admin.HandleFunc("/orders", h.AdminListOrders).Methods("GET").Name("admin.orders")
	admin.HandleFunc("/orders/{id}/status", h.AdminUpdateOrderStatus).Methods("PATCH").Name("admin.orders.status")
	admin.HandleFunc("/categories/{categoryID:[0-9]+}/customizations/{customizationID:[0-9]+}/price", h.AdminSetCustomizationPrice).Methods("PUT").Name("admin.customizations.price")
	admin.HandleFunc("/categories/{categoryID:[0-9]+}/bindings/copy", h.AdminCopyCategoryBindings).Methods("POST").Name("admin.categories.bindings.copy")
	admin.HandleFunc("/variants", h.AdminSetVariantPrice).Methods("PUT").Name("admin.variants")
	admin.HandleFunc("/catalog/refresh", h.AdminRefreshCatalog).Methods("POST").Name("admin.catalog.refresh")

	return r
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/config"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/logging"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/services"
)

const maxRequestBodyBytes = 64 << 10 // 64 KB

type pinger interface {
	Ping(ctx context.Context) error
}

type configuratorService interface {
	Catalog(ctx context.Context) (*catalog.Snapshot, error)
	Quote(ctx context.Context, sel catalog.Selection) (*services.QuoteResult, error)
	SubmitOrder(ctx context.Context, sel catalog.Selection, customer configurator.CustomerInput) (*models.Order, error)
}

type adminService interface {
	ListOrders(ctx context.Context, status string, limit int) ([]services.OrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*services.OrderView, error)
	SetCustomizationPrice(ctx context.Context, categoryID, customizationID int64, raw string) error
	SetVariantPrice(ctx context.Context, categoryID, fitID, materialID int64, raw string) error
	CopyCategoryBindings(ctx context.Context, from, to int64) error
	RefreshCatalog(ctx context.Context) (*catalog.Snapshot, error)
}

// Handlers provides the HTTP handlers for the widget and admin APIs.
type Handlers struct {
	config       *config.Config
	db           pinger
	configurator configuratorService
	admin        adminService
	logger       *slog.Logger
}

type Dependencies struct {
	Config              *config.Config
	DB                  *pgxpool.Pool
	ConfiguratorService *services.ConfiguratorService
	AdminService        *services.AdminService
	Logger              *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.ConfiguratorService == nil {
		return nil, fmt.Errorf("handlers dependencies: configuratorService is required")
	}
	if deps.AdminService == nil {
		return nil, fmt.Errorf("handlers dependencies: adminService is required")
	}

	return &Handlers{
		config:       deps.Config,
		db:           deps.DB,
		configurator: deps.ConfiguratorService,
		admin:        deps.AdminService,
		logger:       logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	// Test database connection
	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Database unhealthy")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// NotFound answers unknown routes with a JSON error.
func (h *Handlers) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
	Timeout   bool   `json:"timeout,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

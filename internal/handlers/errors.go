package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/db"
	"github.com/gitshopapp/merchconfig/internal/services"
)

// writeServiceError maps service errors onto status codes. Unknown errors
// are logged and reported as 500.
func (h *Handlers) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, operation string) {
	var loadErr *catalog.LoadError
	var submitErr *configurator.SubmissionError

	switch {
	case errors.As(err, &loadErr):
		h.loggerFromContext(ctx).Warn("catalog unavailable", "operation", operation, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     "Catalog is temporarily unavailable",
			Retryable: loadErr.Retryable(),
			Timeout:   loadErr.Timeout(),
		})
	case errors.As(err, &submitErr):
		h.loggerFromContext(ctx).Error("order submission failed", "operation", operation, "error", err)
		writeError(w, http.StatusBadGateway, submitErr.Error())
	case errors.Is(err, configurator.ErrNotOrderable),
		errors.Is(err, configurator.ErrInvalidCustomer),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, db.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, db.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "Order status cannot change that way")
	default:
		h.loggerFromContext(ctx).Error("request failed", "operation", operation, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/merchconfig/internal/db"
	"github.com/gitshopapp/merchconfig/internal/services"
)

const maxOrderListLimit = 200

// priceValue keeps the admin price cell as text. Numbers are accepted too;
// null and "" both mean remove.
type priceValue string

func (p *priceValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*p = priceValue(raw)
	default:
		*p = priceValue(data)
	}
	return nil
}

type ordersResponse struct {
	Orders []services.OrderView `json:"orders"`
}

func (h *Handlers) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	limit := db.DefaultOrderListLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(parsed, maxOrderListLimit)
	}

	orders, err := h.admin.ListOrders(ctx, query.Get("status"), limit)
	if err != nil {
		h.writeServiceError(ctx, w, err, "admin.list_orders")
		return
	}
	writeJSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req orderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status update")
		return
	}

	order, err := h.admin.UpdateOrderStatus(ctx, orderID, req.Status)
	if err != nil {
		h.writeServiceError(ctx, w, err, "admin.update_order_status")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type customizationPriceRequest struct {
	Price priceValue `json:"price"`
}

func (h *Handlers) AdminSetCustomizationPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	categoryID, err := pathID(vars, "categoryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	customizationID, err := pathID(vars, "customizationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customization ID")
		return
	}

	var req customizationPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price")
		return
	}

	if err := h.admin.SetCustomizationPrice(ctx, categoryID, customizationID, string(req.Price)); err != nil {
		h.writeServiceError(ctx, w, err, "admin.set_customization_price")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type variantPriceRequest struct {
	CategoryID int64      `json:"category_id"`
	FitID      int64      `json:"fit_id"`
	MaterialID int64      `json:"material_id"`
	Price      priceValue `json:"price"`
}

func (h *Handlers) AdminSetVariantPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req variantPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid variant")
		return
	}

	if err := h.admin.SetVariantPrice(ctx, req.CategoryID, req.FitID, req.MaterialID, string(req.Price)); err != nil {
		h.writeServiceError(ctx, w, err, "admin.set_variant_price")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type copyBindingsRequest struct {
	FromCategoryID int64 `json:"from_category_id"`
}

func (h *Handlers) AdminCopyCategoryBindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categoryID, err := pathID(mux.Vars(r), "categoryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req copyBindingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid copy request")
		return
	}
	if req.FromCategoryID == categoryID {
		writeError(w, http.StatusUnprocessableEntity, "Source and target categories must differ")
		return
	}

	if err := h.admin.CopyCategoryBindings(ctx, req.FromCategoryID, categoryID); err != nil {
		h.writeServiceError(ctx, w, err, "admin.copy_bindings")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type refreshResponse struct {
	Status     string `json:"status"`
	Categories int    `json:"categories"`
}

func (h *Handlers) AdminRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.admin.RefreshCatalog(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "admin.refresh_catalog")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:     "refreshed",
		Categories: len(snapshot.Categories()),
	})
}

func pathID(vars map[string]string, name string) (int64, error) {
	return strconv.ParseInt(vars[name], 10, 64)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/pricing"
)

// quantityValue accepts either a JSON number or the raw text of the
// quantity field. Anything unparsable becomes the minimum quantity.
type quantityValue struct {
	value int
	set   bool
}

func (q *quantityValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = quantityValue{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	*q = quantityValue{value: pricing.ClampQuantity(raw), set: true}
	return nil
}

func (q quantityValue) orDefault() int {
	if !q.set {
		return pricing.DefaultQuantity
	}
	return q.value
}

type selectionRequest struct {
	CategoryID       int64         `json:"category_id"`
	FitID            int64         `json:"fit_id"`
	MaterialID       int64         `json:"material_id"`
	ColorID          int64         `json:"color_id"`
	PrintFrontID     int64         `json:"print_front_id"`
	PrintBackID      int64         `json:"print_back_id"`
	CustomizationIDs []int64       `json:"customization_ids"`
	Quantity         quantityValue `json:"quantity"`
}

func (req selectionRequest) selection() catalog.Selection {
	sel := catalog.NewSelection()
	sel.CategoryID = req.CategoryID
	sel.FitID = req.FitID
	sel.MaterialID = req.MaterialID
	sel.ColorID = req.ColorID
	sel.PrintFrontID = req.PrintFrontID
	sel.PrintBackID = req.PrintBackID
	if req.CustomizationIDs != nil {
		sel.CustomizationIDs = req.CustomizationIDs
	}
	sel.Quantity = req.Quantity.orDefault()
	return sel
}

type orderRequest struct {
	Selection selectionRequest `json:"selection"`
	configurator.CustomerInput
}

type catalogResponse struct {
	Catalog catalog.Data `json:"catalog"`
}

// GetCatalog returns the current catalog snapshot.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.configurator.Catalog(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "catalog")
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{Catalog: snapshot.Data()})
}

// PostQuote normalizes a selection and prices it.
func (h *Handlers) PostQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid selection")
		return
	}

	result, err := h.configurator.Quote(ctx, req.selection())
	if err != nil {
		h.writeServiceError(ctx, w, err, "quote")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// PostOrder submits the selection together with the customer's details.
func (h *Handlers) PostOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order")
		return
	}

	order, err := h.configurator.SubmitOrder(ctx, req.Selection.selection(), req.CustomerInput)
	if err != nil {
		h.writeServiceError(ctx, w, err, "submit_order")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

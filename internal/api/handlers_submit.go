package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copiiworld/cajita-go/internal/models"
)

// submitOrder runs the full submission: render crops, post the multipart
// payload, finalize the order. Failures leave the slot store untouched and
// come back with the service's message for display.
func (h *Handlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeError(w, models.ErrBadRequest("order_id required"))
		return
	}

	result, appErr := h.submit.Submit(r.Context(), req.OrderID)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getOrder proxies the order summary for the editor header.
func (h *Handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "oid")
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, models.ErrUpstream(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/copiiworld/cajita-go/internal/models"
)

// saveSnapshot persists the slot store for the given order, committing any
// in-progress crop first. Called by the UI on navigation away from the
// editor.
func (h *Handlers) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeError(w, models.ErrBadRequest("order_id required"))
		return
	}

	slots := h.sess.SnapshotSlots()
	if err := h.snaps.Save(r.Context(), req.OrderID, slots); err != nil {
		writeError(w, models.ErrInternal("save snapshot: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": len(slots)})
}

// restoreSnapshot rebuilds the slot store from the order's persisted
// snapshot and consumes it. No snapshot (or a corrupt one) restores
// nothing — the editor opens empty.
func (h *Handlers) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeError(w, models.ErrBadRequest("order_id required"))
		return
	}

	slots, err := h.snaps.Restore(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, models.ErrInternal("restore snapshot: "+err.Error()))
		return
	}
	if slots != nil {
		h.sess.ReplaceAll(slots)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"restored": len(slots),
		"session":  h.sess.View(),
	})
}

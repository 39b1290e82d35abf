package api

import (
	"encoding/json"
	"net/http"

	"github.com/copiiworld/cajita-go/internal/models"
)

func (h *Handlers) listPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"presets": h.presets.Entries()})
}

// addPresets fills remaining slots from the stock catalog. Selection past
// capacity is truncated silently, like file adds.
func (h *Handlers) addPresets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	added := h.presets.AddPresets(r.Context(), req.Paths)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":   added,
		"session": h.sess.View(),
	})
}

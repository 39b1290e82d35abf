package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/copiiworld/cajita-go/internal/models"
)

const maxUploadBytes = 100 * 1024 * 1024 // whole batch

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.View())
}

// addFiles accepts a multipart batch under the "files" field. The session
// filters non-images and truncates past capacity; the response reports how
// many slots were actually added.
func (h *Handlers) addFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, models.ErrBadRequest("invalid multipart form: "+err.Error()))
		return
	}

	var files []models.FileUpload
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, models.ErrBadRequest("open upload: "+err.Error()))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, models.ErrBadRequest("read upload: "+err.Error()))
			return
		}
		files = append(files, models.FileUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	added := h.sess.AddFiles(files)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":   added,
		"session": h.sess.View(),
	})
}

func (h *Handlers) clearAll(w http.ResponseWriter, r *http.Request) {
	h.sess.ClearAll()
	writeJSON(w, http.StatusOK, h.sess.View())
}

func (h *Handlers) removeSlot(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	if appErr := h.sess.RemoveAt(idx); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.View())
}

func (h *Handlers) moveSlot(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		To int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	h.sess.MoveSlot(idx, req.To)
	writeJSON(w, http.StatusOK, h.sess.View())
}

func (h *Handlers) slotGeometry(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	if appErr := h.sess.OnImageGeometryKnown(idx, req.Width, req.Height); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.View())
}

func (h *Handlers) selectSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	if appErr := h.sess.SelectSlot(req.Index); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.View())
}

func (h *Handlers) updateLiveCrop(w http.ResponseWriter, r *http.Request) {
	var rect models.CropRect
	if err := json.NewDecoder(r.Body).Decode(&rect); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	h.sess.UpdateLiveCrop(rect)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) commitLiveCrop(w http.ResponseWriter, r *http.Request) {
	h.sess.CommitLiveCrop()
	writeJSON(w, http.StatusOK, h.sess.View())
}

// slotMedia serves a slot's bytes by display handle. A stale handle is a
// plain 404: handles die with their slot.
func (h *Handlers) slotMedia(w http.ResponseWriter, r *http.Request) {
	handle := "media/" + chi.URLParam(r, "handle")
	data, fileName, ok := h.sess.ImageByHandle(handle)
	if !ok {
		writeError(w, models.ErrNotFound("unknown display handle"))
		return
	}
	ct := "application/octet-stream"
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		ct = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `inline; filename="`+fileName+`"`)
	_, _ = w.Write(data)
}

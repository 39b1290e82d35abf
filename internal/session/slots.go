package session

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/copiiworld/cajita-go/internal/crop"
	"github.com/copiiworld/cajita-go/internal/models"
)

// imageExtensions is the fallback filter for upload paths that omit the
// content type (common on mobile). Matching is case-insensitive.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

func isImageFile(f models.FileUpload) bool {
	if f.ContentType != "" {
		return strings.HasPrefix(f.ContentType, "image/")
	}
	return imageExtensions[strings.ToLower(filepath.Ext(f.Name))]
}

func newDisplayHandle() string {
	return "media/" + uuid.NewString()
}

// AddFiles filters the batch to image-like content, truncates it to the
// remaining capacity and appends a slot per surviving file. Items beyond
// capacity are discarded silently: capacity is a soft UI constraint, never
// an error. Returns how many slots were actually added.
//
// Natural dimensions are measured asynchronously; the default centered
// square crop lands via geometryKnown once the measurement finishes.
func (s *Session) AddFiles(files []models.FileUpload) int {
	var added []string
	_ = s.apply(func(st *state) error {
		remaining := models.RequiredCount - len(st.slots)
		for _, f := range files {
			if remaining == 0 {
				break
			}
			if !isImageFile(f) {
				continue
			}
			slot := models.ImageSlot{
				ID:            uuid.NewString(),
				FileName:      f.Name,
				SourceBytes:   f.Data,
				DisplayHandle: newDisplayHandle(),
			}
			st.slots = append(st.slots, slot)
			added = append(added, slot.ID)
			remaining--
		}
		return nil
	})

	// Measure off the lock; the result is applied only if the slot is
	// still a member of the store (stale-write guard).
	for _, id := range added {
		go s.measureSlot(id)
	}
	return len(added)
}

// AddProvisionedSlot appends a slot whose bytes, dimensions and default
// crop were prepared by the caller (preset provisioning). Returns false if
// the store is already at capacity.
func (s *Session) AddProvisionedSlot(fileName string, data []byte, w, h int, c models.CropRect) bool {
	ok := false
	_ = s.apply(func(st *state) error {
		if len(st.slots) >= models.RequiredCount {
			return nil
		}
		st.slots = append(st.slots, models.ImageSlot{
			ID:            uuid.NewString(),
			FileName:      fileName,
			SourceBytes:   data,
			DisplayHandle: newDisplayHandle(),
			Width:         w,
			Height:        h,
			Crop:          &c,
		})
		ok = true
		return nil
	})
	return ok
}

func (s *Session) measureSlot(id string) {
	s.mu.Lock()
	var data []byte
	for i := range s.st.slots {
		if s.st.slots[i].ID == id {
			data = s.st.slots[i].SourceBytes
			break
		}
	}
	s.mu.Unlock()
	if data == nil {
		return
	}

	w, h, err := crop.Measure(data)
	if err != nil {
		slog.Warn("session: could not measure image", "slot", id, "err", err)
		return
	}
	s.geometryKnown(id, w, h)
}

// geometryKnown records a slot's natural dimensions and, if the slot has no
// committed crop yet, commits the default centered square. The slot is
// looked up by id: if it was removed while the measurement was in flight,
// the result is dropped.
func (s *Session) geometryKnown(id string, w, h int) {
	_ = s.apply(func(st *state) error {
		for i := range st.slots {
			if st.slots[i].ID != id {
				continue
			}
			st.slots[i].Width = w
			st.slots[i].Height = h
			if st.slots[i].Crop == nil {
				def := crop.DefaultSquare(w, h)
				st.slots[i].Crop = &def
			}
			return nil
		}
		return nil // slot gone — stale result, discard
	})
}

// OnImageGeometryKnown is the index-based variant used when the rendering
// layer reports display-measured geometry.
func (s *Session) OnImageGeometryKnown(i, w, h int) *models.AppError {
	s.mu.Lock()
	if i < 0 || i >= len(s.st.slots) {
		s.mu.Unlock()
		return models.ErrBadRequest("slot index out of range")
	}
	if w <= 0 || h <= 0 {
		s.mu.Unlock()
		return models.ErrBadRequest("dimensions must be positive")
	}
	id := s.st.slots[i].ID
	s.mu.Unlock()

	s.geometryKnown(id, w, h)
	return nil
}

// RemoveAt deletes the slot at index i, releasing its display handle. The
// selection pointer keeps tracking the same logical slot, or clears if that
// slot was the one removed.
func (s *Session) RemoveAt(i int) *models.AppError {
	err := s.apply(func(st *state) error {
		if i < 0 || i >= len(st.slots) {
			return models.ErrBadRequest("slot index out of range")
		}
		st.slots = append(st.slots[:i], st.slots[i+1:]...)
		switch {
		case st.selected == i:
			st.selected = -1
			st.live = nil
		case st.selected > i:
			st.selected--
		}
		return nil
	})
	if err != nil {
		return err.(*models.AppError)
	}
	return nil
}

// MoveSlot reinserts the slot at position from at position to. A move onto
// itself or with an out-of-range index is a silent no-op. Crops travel with
// their slot, and the selection follows the logical slot across the move.
func (s *Session) MoveSlot(from, to int) {
	_ = s.apply(func(st *state) error {
		if from == to {
			return nil
		}
		if from < 0 || from >= len(st.slots) || to < 0 || to >= len(st.slots) {
			return nil
		}
		var selectedID string
		if st.selected >= 0 {
			selectedID = st.slots[st.selected].ID
		}

		slot := st.slots[from]
		st.slots = append(st.slots[:from], st.slots[from+1:]...)
		st.slots = append(st.slots[:to], append([]models.ImageSlot{slot}, st.slots[to:]...)...)

		if selectedID != "" {
			st.selected = -1
			for i := range st.slots {
				if st.slots[i].ID == selectedID {
					st.selected = i
					break
				}
			}
		}
		return nil
	})
}

// ClearAll releases every display handle and empties the store.
func (s *Session) ClearAll() {
	_ = s.apply(func(st *state) error {
		st.slots = nil
		st.selected = -1
		st.live = nil
		return nil
	})
}

// ReplaceAll swaps in a fully rebuilt slot store (session restore). The
// selection and live crop reset; phase is untouched. Slots arriving without
// natural dimensions are re-measured in the background.
func (s *Session) ReplaceAll(slots []models.ImageSlot) {
	var unmeasured []string
	_ = s.apply(func(st *state) error {
		st.slots = slots
		st.selected = -1
		st.live = nil
		for i := range st.slots {
			if st.slots[i].Width == 0 || st.slots[i].Height == 0 {
				unmeasured = append(unmeasured, st.slots[i].ID)
			}
		}
		return nil
	})
	for _, id := range unmeasured {
		go s.measureSlot(id)
	}
}

// ImageByHandle resolves a display handle to the slot's bytes and file
// name. Handles are transient: a stale handle simply misses.
func (s *Session) ImageByHandle(handle string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.slots {
		if s.st.slots[i].DisplayHandle == handle {
			data := make([]byte, len(s.st.slots[i].SourceBytes))
			copy(data, s.st.slots[i].SourceBytes)
			return data, s.st.slots[i].FileName, true
		}
	}
	return nil, "", false
}

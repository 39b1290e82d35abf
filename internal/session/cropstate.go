package session

import (
	"github.com/copiiworld/cajita-go/internal/crop"
	"github.com/copiiworld/cajita-go/internal/models"
)

// SelectSlot makes slot i the cropping target. Any pending live crop for
// the previously selected slot is committed first; the new slot's committed
// crop (if any) becomes the initial live state. Index -1 deselects.
func (s *Session) SelectSlot(i int) *models.AppError {
	err := s.apply(func(st *state) error {
		if i < -1 || i >= len(st.slots) {
			return models.ErrBadRequest("slot index out of range")
		}
		commitLive(st)
		st.selected = i
		st.live = nil
		if i >= 0 && st.slots[i].Crop != nil {
			r := *st.slots[i].Crop
			st.live = &r
		}
		return nil
	})
	if err != nil {
		return err.(*models.AppError)
	}
	return nil
}

// UpdateLiveCrop records the user's current crop rectangle for the selected
// slot without committing it. Updates are coalesced: the rectangle always
// lands in state, but observers are notified at most once per frame tick.
// The final rectangle is never lost — it is carried until the next commit
// or structural publish.
//
// This path deliberately bypasses apply(): drag gestures arrive at pointer
// rate and deep-copying slot bytes per event would be pure waste, while the
// mutation itself touches only the live pointer.
func (s *Session) UpdateLiveCrop(r models.CropRect) {
	s.mu.Lock()
	if s.st.selected < 0 {
		s.mu.Unlock()
		return
	}
	s.st.live = &r
	publish := s.limiter.Allow()
	var view models.SessionView
	if publish {
		view = s.viewLocked()
	}
	s.mu.Unlock()

	if publish {
		s.bus.Publish(view)
	}
}

// CommitLiveCrop writes the live rectangle into the selected slot's crop.
// Called on slot switch, navigation away, and before submission. With no
// live rectangle the previously committed (or default) crop stays as is.
// Committing twice without an intervening update is a no-op.
func (s *Session) CommitLiveCrop() {
	_ = s.apply(func(st *state) error {
		commitLive(st)
		return nil
	})
}

// commitLive applies the live rectangle to the selected slot, clamped to
// the slot's natural bounds when they are known. Degenerate rectangles are
// dropped rather than committed: a committed crop always has area.
func commitLive(st *state) {
	if st.selected < 0 || st.live == nil {
		return
	}
	slot := &st.slots[st.selected]
	r := *st.live
	if slot.Width > 0 && slot.Height > 0 {
		r = crop.Clamp(r, slot.Width, slot.Height)
	}
	if !r.Valid() {
		return
	}
	slot.Crop = &r
}

// SnapshotSlots commits any pending live crop and returns a deep copy of
// the slot store, in order. This is the input to the persistence codec and
// the submission assembler.
func (s *Session) SnapshotSlots() []models.ImageSlot {
	var out []models.ImageSlot
	_ = s.apply(func(st *state) error {
		commitLive(st)
		out = make([]models.ImageSlot, len(st.slots))
		for i := range st.slots {
			out[i] = st.slots[i].DeepCopy()
		}
		return nil
	})
	return out
}

// Package session implements the crop session state machine — the single
// source of truth for the slot store, the selection pointer, and the live
// crop rectangle. All state mutations go through the apply() method which
// ensures atomicity with respect to observers: a mutation and the re-derived
// selection index are published as one view, never half-applied.
package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/copiiworld/cajita-go/internal/events"
	"github.com/copiiworld/cajita-go/internal/models"
)

// publishesPerSecond bounds how often live-crop updates reach observers.
// Pointer-drag gestures arrive far faster than a display refresh; dropping
// intermediate rectangles is fine, dropping the final one is not — the
// pending rect is kept in state and flushed by the next structural publish.
const publishesPerSecond = 60

// state is the complete mutable session state. apply() deep-copies it
// before mutating so a failed mutation leaves the session untouched.
type state struct {
	slots    []models.ImageSlot
	selected int              // index into slots, or -1
	live     *models.CropRect // in-progress crop for the selected slot
	phase    string
	lastErr  string
}

func (s state) deepCopy() state {
	cp := s
	cp.slots = make([]models.ImageSlot, len(s.slots))
	for i, slot := range s.slots {
		cp.slots[i] = slot.DeepCopy()
	}
	if s.live != nil {
		r := *s.live
		cp.live = &r
	}
	return cp
}

// Session is the central state machine for one editor session.
type Session struct {
	mu      sync.Mutex
	st      state
	bus     *events.Bus
	limiter *rate.Limiter
}

// New creates an empty session publishing to the given bus.
func New(bus *events.Bus) *Session {
	return &Session{
		st:      state{selected: -1, phase: PhaseIdle},
		bus:     bus,
		limiter: rate.NewLimiter(rate.Every(time.Second/publishesPerSecond), 1),
	}
}

// Submission phases, owned by the session so observers see them in the
// same view as the slot store.
const (
	PhaseIdle       = "idle"
	PhaseSubmitting = "submitting"
	PhaseConfirmed  = "confirmed"
)

// apply is the core mutation primitive. It:
//  1. Acquires the lock
//  2. Deep-copies the current state
//  3. Calls fn to modify the copy (fn may return an error to abort)
//  4. If fn succeeds: commits the copy and publishes the new view
func (s *Session) apply(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.deepCopy()
	if err := fn(&next); err != nil {
		return err
	}
	s.st = next
	s.bus.Publish(s.viewLocked())
	return nil
}

// View returns the current observable state. Slot bytes are not included.
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() models.SessionView {
	view := models.SessionView{
		Slots:         make([]models.SlotView, len(s.st.slots)),
		SelectedIndex: s.st.selected,
		Phase:         s.st.phase,
		LastError:     s.st.lastErr,
	}
	for i, slot := range s.st.slots {
		sv := models.SlotView{
			ID:            slot.ID,
			FileName:      slot.FileName,
			DisplayHandle: slot.DisplayHandle,
			Width:         slot.Width,
			Height:        slot.Height,
		}
		if slot.Crop != nil {
			c := *slot.Crop
			sv.Crop = &c
		}
		view.Slots[i] = sv
	}
	if s.st.live != nil {
		r := *s.st.live
		view.LiveCrop = &r
	}
	view.CanSubmit = s.canSubmitLocked()
	return view
}

// canSubmitLocked reports whether the store is full and every slot's
// effective crop is non-degenerate.
func (s *Session) canSubmitLocked() bool {
	if len(s.st.slots) != models.RequiredCount {
		return false
	}
	for i := range s.st.slots {
		c := s.effectiveCropLocked(i)
		if c == nil || !c.Valid() {
			return false
		}
	}
	return true
}

// effectiveCropLocked is the crop that would be committed right now: the
// live rectangle if slot i is selected and one exists, else the committed
// value.
func (s *Session) effectiveCropLocked(i int) *models.CropRect {
	if i == s.st.selected && s.st.live != nil {
		r := *s.st.live
		return &r
	}
	if s.st.slots[i].Crop != nil {
		r := *s.st.slots[i].Crop
		return &r
	}
	return nil
}

// EffectiveCrop returns the effective crop for slot i, or nil.
func (s *Session) EffectiveCrop(i int) *models.CropRect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.st.slots) {
		return nil
	}
	return s.effectiveCropLocked(i)
}

// CanSubmit reports whether the submission precondition holds.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

// SetPhase records the submission phase and optional error message so they
// ride along in published views.
func (s *Session) SetPhase(phase, lastErr string) {
	_ = s.apply(func(st *state) error {
		st.phase = phase
		st.lastErr = lastErr
		return nil
	})
}

// Phase returns the current submission phase.
func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.phase
}

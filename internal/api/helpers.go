// Package api implements the HTTP surface the storefront editor drives.
// The rendering layer owns no state: it mutates the session through these
// handlers and observes the resulting views over SSE.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/copiiworld/cajita-go/internal/models"
	"github.com/copiiworld/cajita-go/internal/presets"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	sess    Session
	snaps   Snapshotter
	submit  Submitter
	presets PresetProvider
	orders  OrderReader
	events  EventBus
}

// Session is the interface the handlers use to drive the crop session.
type Session interface {
	View() models.SessionView
	AddFiles(files []models.FileUpload) int
	RemoveAt(i int) *models.AppError
	MoveSlot(from, to int)
	ClearAll()
	SelectSlot(i int) *models.AppError
	UpdateLiveCrop(r models.CropRect)
	CommitLiveCrop()
	OnImageGeometryKnown(i, w, h int) *models.AppError
	ImageByHandle(handle string) (data []byte, fileName string, ok bool)
	SnapshotSlots() []models.ImageSlot
	ReplaceAll(slots []models.ImageSlot)
}

// Snapshotter persists and restores the slot store across navigations.
type Snapshotter interface {
	Save(ctx context.Context, orderID string, slots []models.ImageSlot) error
	Restore(ctx context.Context, orderID string) ([]models.ImageSlot, error)
}

// Submitter runs the final submission.
type Submitter interface {
	Submit(ctx context.Context, orderID string) (*models.SendResult, *models.AppError)
}

// PresetProvider lists the stock catalog and fills slots from it.
type PresetProvider interface {
	Entries() []presets.Entry
	AddPresets(ctx context.Context, paths []string) int
}

// OrderReader fetches the order summary for the editor header.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// EventBus is the interface for subscribing to session view events.
type EventBus interface {
	Subscribe(id string) <-chan models.SessionView
	Unsubscribe(id string)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// intParam reads an integer path parameter by name.
func intParam(r *http.Request, name string) (int, error) {
	s := chi.URLParam(r, name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, models.ErrBadRequest("invalid " + name + " parameter")
	}
	return n, nil
}

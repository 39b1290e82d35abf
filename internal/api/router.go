package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(sess Session, snaps Snapshotter, sub Submitter, presets PresetProvider, orders OrderReader, bus EventBus) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{
		sess:    sess,
		snaps:   snaps,
		submit:  sub,
		presets: presets,
		orders:  orders,
		events:  bus,
	}

	// Session state
	r.Get("/api/session", h.getSession)
	r.Post("/api/session/files", h.addFiles)
	r.Post("/api/session/clear", h.clearAll)

	// Slots
	r.Delete("/api/session/slots/{idx}", h.removeSlot)
	r.Post("/api/session/slots/{idx}/move", h.moveSlot)
	r.Post("/api/session/slots/{idx}/geometry", h.slotGeometry)

	// Cropping
	r.Post("/api/session/select", h.selectSlot)
	r.Post("/api/session/crop", h.updateLiveCrop)
	r.Post("/api/session/crop/commit", h.commitLiveCrop)

	// Display handles
	r.Get("/api/session/media/{handle}", h.slotMedia)

	// Persistence across navigation
	r.Post("/api/session/snapshot", h.saveSnapshot)
	r.Post("/api/session/restore", h.restoreSnapshot)

	// Stock images
	r.Get("/api/presets", h.listPresets)
	r.Post("/api/session/presets", h.addPresets)

	// Submission + order summary
	r.Post("/api/session/submit", h.submitOrder)
	r.Get("/api/orders/{oid}", h.getOrder)

	// SSE
	r.Get("/api/subscribe", h.sseEvents)

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

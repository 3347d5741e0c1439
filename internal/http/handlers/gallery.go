package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

// ListGallery returns the full collection snapshot, newest batch first.
func (a *App) ListGallery(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Scheduler.Items())
}

// GalleryImage streams the rendered artwork for one completed item.
func (a *App) GalleryImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var found *domain.GalleryItem
	for _, item := range a.Scheduler.Items() {
		if item.ID == id {
			match := item
			found = &match
			break
		}
	}
	if found == nil {
		a.error(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	if found.Status != domain.StatusCompleted || found.ImageKey == "" {
		a.error(w, http.StatusConflict, "not_ready", "item has no rendered image")
		return
	}
	data, err := a.Files.Read(r.Context(), found.ImageKey)
	if err != nil {
		a.fail(w, err, "image read failed")
		return
	}
	mime := found.ImageMIME
	if mime == "" {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListHistory returns the append-only render history, newest first.
func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := a.History.List(r.Context())
	if err != nil {
		a.fail(w, err, "failed to load history")
		return
	}
	a.json(w, http.StatusOK, records)
}

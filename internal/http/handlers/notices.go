package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ListNotices(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Notices.Active())
}

func (a *App) DismissNotice(w http.ResponseWriter, r *http.Request) {
	a.Notices.Dismiss(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

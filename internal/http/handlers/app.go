// Package handlers exposes the studio operations over HTTP. Handlers stay
// thin: decode, call the owning component, encode.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/notify"
	"studio/internal/render"
	"studio/internal/storage"
	"studio/internal/store"
)

type App struct {
	Forms     *store.FormStore
	Scheduler *render.Scheduler
	Gateway   *gateway.Gateway
	Backup    *store.BackupService
	Notices   *notify.Center
	Files     *storage.FileStore

	Ambiences domain.AmbienceRepository
	Presets   domain.PresetRepository
	History   domain.HistoryRepository

	Logger zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// fail maps domain sentinel errors onto HTTP statuses; everything else is a
// 500 with the generic message.
func (a *App) fail(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusUnprocessableEntity, "validation", err.Error())
	case errors.Is(err, domain.ErrInvalidBackup):
		a.error(w, http.StatusBadRequest, "invalid_backup", err.Error())
	case errors.Is(err, domain.ErrMissingAPIKey):
		a.error(w, http.StatusFailedDependency, "missing_api_key", "GEMINI_API_KEY is not configured")
	case errors.Is(err, domain.ErrRateLimited):
		a.error(w, http.StatusTooManyRequests, "rate_limited", "generation quota exhausted, try again later")
	default:
		a.Logger.Error().Err(err).Msg("http: request failed")
		a.error(w, http.StatusInternalServerError, "internal", fallback)
	}
}

func (a *App) notice(severity, message string) {
	if a.Notices != nil {
		a.Notices.Push(severity, message)
	}
}

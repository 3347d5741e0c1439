package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
	"studio/internal/notify"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

func (a *App) ListAmbiences(w http.ResponseWriter, r *http.Request) {
	ambiences, err := a.Ambiences.List(r.Context())
	if err != nil {
		a.fail(w, err, "failed to load ambiences")
		return
	}
	a.json(w, http.StatusOK, ambiences)
}

// SaveAmbience creates or updates a custom ambience. Titles are normalized
// to title case so the ambience list stays uniform.
func (a *App) SaveAmbience(w http.ResponseWriter, r *http.Request) {
	var ambience domain.Ambience
	if err := json.NewDecoder(r.Body).Decode(&ambience); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ambience.Title = titleCaser.String(strings.TrimSpace(ambience.Title))
	ambience.Description = strings.TrimSpace(ambience.Description)
	if ambience.Title == "" || ambience.Description == "" {
		a.error(w, http.StatusUnprocessableEntity, "validation", "title and description required")
		return
	}
	if ambience.ID == "" {
		ambience.ID = uuid.NewString()
	}
	ambience.IsCustom = true
	if err := a.Ambiences.Save(r.Context(), ambience); err != nil {
		a.fail(w, err, "failed to save ambience")
		return
	}
	a.notice(notify.SeveritySuccess, "Ambiente salvo.")
	a.json(w, http.StatusOK, ambience)
}

func (a *App) DeleteAmbience(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Ambiences.Delete(r.Context(), id); err != nil {
		a.fail(w, err, "failed to delete ambience")
		return
	}
	a.Forms.Update(func(f *domain.FormData) {
		if f.SelectedAmbienceID == id {
			f.SelectedAmbienceID = ""
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

// SelectAmbience points the draft at an ambience and bumps its use count.
func (a *App) SelectAmbience(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ambiences, err := a.Ambiences.List(r.Context())
	if err != nil {
		a.fail(w, err, "failed to load ambiences")
		return
	}
	var stored *domain.Ambience
	for i := range ambiences {
		if ambiences[i].ID == id {
			stored = &ambiences[i]
			break
		}
	}

	found := false
	form := a.Forms.Update(func(f *domain.FormData) {
		if stored != nil {
			present := false
			for i := range f.CustomAmbiences {
				if f.CustomAmbiences[i].ID == id {
					present = true
					break
				}
			}
			if !present {
				f.CustomAmbiences = append(f.CustomAmbiences, *stored)
			}
			f.SelectedAmbienceID = id
			found = true
			return
		}
		for i := range f.SuggestedAmbiences {
			if f.SuggestedAmbiences[i].ID == id {
				f.SelectedAmbienceID = id
				found = true
				return
			}
		}
	})
	if !found {
		a.error(w, http.StatusNotFound, "not_found", "ambience not found")
		return
	}
	if stored != nil {
		stored.UseCount++
		if err := a.Ambiences.Save(r.Context(), *stored); err != nil {
			a.Logger.Warn().Err(err).Str("ambience_id", id).Msg("http: use count update failed")
		}
	}
	a.json(w, http.StatusOK, form)
}

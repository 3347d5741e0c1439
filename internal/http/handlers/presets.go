package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/notify"
)

func (a *App) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := a.Presets.List(r.Context())
	if err != nil {
		a.fail(w, err, "failed to load presets")
		return
	}
	a.json(w, http.StatusOK, presets)
}

type savePresetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SavePreset snapshots the current draft styling as a user preset.
func (a *App) SavePreset(w http.ResponseWriter, r *http.Request) {
	var req savePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Name = titleCaser.String(strings.TrimSpace(req.Name))
	if req.Name == "" {
		a.error(w, http.StatusUnprocessableEntity, "validation", "name required")
		return
	}

	form := a.Forms.Get()
	now := time.Now().UTC()
	preset := domain.Preset{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		Description:         strings.TrimSpace(req.Description),
		CreatedAt:           now,
		UpdatedAt:           now,
		Mode:                form.Objective,
		Style:               form.Style,
		MarketingDirection:  form.MarketingDirection,
		CopyTone:            form.Tone,
		AspectRatio:         form.DefaultAspectRatio,
		Angle:               form.Angle,
		Shadow:              form.Shadow,
		Background:          form.Background,
		CatalogBackground:   form.CatalogBackground,
		PropsEnabled:        len(form.Props) > 0,
		PropsList:           append([]string(nil), form.Props...),
		PropsPolicy:         "livre",
		UseReferenceImages:  form.UseRefImages,
		LockProductFidelity: form.LockProduct,
		DefaultRotation:     form.DefaultRotation,
		ShowNegativePrompts: true,
	}
	if err := a.Presets.Save(r.Context(), preset); err != nil {
		a.fail(w, err, "failed to save preset")
		return
	}
	a.notice(notify.SeveritySuccess, "Preset salvo.")
	a.json(w, http.StatusCreated, preset)
}

// ApplyPreset copies a preset's styling onto the draft.
func (a *App) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	presets, err := a.Presets.List(r.Context())
	if err != nil {
		a.fail(w, err, "failed to load presets")
		return
	}
	var preset *domain.Preset
	for i := range presets {
		if presets[i].ID == id {
			preset = &presets[i]
			break
		}
	}
	if preset == nil {
		a.error(w, http.StatusNotFound, "not_found", "preset not found")
		return
	}

	form := a.Forms.Update(func(f *domain.FormData) {
		f.Objective = preset.Mode
		f.Style = preset.Style
		f.MarketingDirection = preset.MarketingDirection
		f.Tone = preset.CopyTone
		f.DefaultAspectRatio = preset.AspectRatio
		f.Angle = preset.Angle
		f.Shadow = preset.Shadow
		f.Background = preset.Background
		f.CatalogBackground = preset.CatalogBackground
		f.Props = append([]string(nil), preset.PropsList...)
		f.UseRefImages = preset.UseReferenceImages
		f.LockProduct = preset.LockProductFidelity
		f.DefaultRotation = preset.DefaultRotation
	})
	a.notice(notify.SeverityInfo, "Preset aplicado: "+preset.Name)
	a.json(w, http.StatusOK, form)
}

// DeletePreset removes a user preset; system presets are protected.
func (a *App) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Presets.Delete(r.Context(), id); err != nil {
		a.fail(w, err, "failed to delete preset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

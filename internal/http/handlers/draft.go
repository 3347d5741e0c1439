package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/notify"
	"studio/internal/providers/genai"
)

func (a *App) GetDraft(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Forms.Get())
}

// PutDraft replaces the draft with the submitted form. The fixed visual
// rules block is not client-editable and is restored server side.
func (a *App) PutDraft(w http.ResponseWriter, r *http.Request) {
	var form domain.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	form.BaseBrief = domain.BaseBriefText
	a.Forms.Replace(form)
	a.json(w, http.StatusOK, a.Forms.Get())
}

func (a *App) ResetDraft(w http.ResponseWriter, r *http.Request) {
	a.Forms.Replace(domain.NewFormData())
	a.notice(notify.SeverityInfo, "Sessão reiniciada.")
	a.json(w, http.StatusOK, a.Forms.Get())
}

type addImageRequest struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
	FileName string `json:"fileName"`
	IsHero   bool   `json:"isHero"`
}

func (a *App) AddReferenceImage(w http.ResponseWriter, r *http.Request) {
	var req addImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Data) == 0 || req.MIMEType == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "data and mimeType required")
		return
	}
	form := a.Forms.Update(func(f *domain.FormData) {
		if req.IsHero {
			for i := range f.ReferenceImages {
				f.ReferenceImages[i].IsHero = false
			}
		}
		f.ReferenceImages = append(f.ReferenceImages, domain.ReferenceImage{
			ID:       uuid.NewString(),
			Data:     req.Data,
			MIMEType: req.MIMEType,
			FileName: req.FileName,
			IsHero:   req.IsHero,
		})
	})
	a.json(w, http.StatusOK, form)
}

func (a *App) RemoveReferenceImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed := false
	form := a.Forms.Update(func(f *domain.FormData) {
		for i := range f.ReferenceImages {
			if f.ReferenceImages[i].ID == id {
				f.ReferenceImages = append(f.ReferenceImages[:i], f.ReferenceImages[i+1:]...)
				removed = true
				return
			}
		}
	})
	if !removed {
		a.error(w, http.StatusNotFound, "not_found", "reference image not found")
		return
	}
	a.json(w, http.StatusOK, form)
}

// Autocomplete asks the AI for wizard field suggestions based on the
// briefing and applies the recognized values to the draft.
func (a *App) Autocomplete(w http.ResponseWriter, r *http.Request) {
	form := a.Forms.Get()
	briefing := form.BriefingText()
	if briefing == "" {
		briefing = form.ProductName
	}
	if strings.TrimSpace(briefing) == "" {
		a.notice(notify.SeverityWarning, "Descreva o produto ou preencha o briefing antes de pedir sugestões.")
		a.error(w, http.StatusUnprocessableEntity, "validation", "a briefing or product name is required")
		return
	}
	suggestions, err := a.Gateway.SuggestFields(r.Context(), briefing)
	if err != nil {
		a.fail(w, err, "field suggestion failed")
		return
	}
	updated := a.Forms.Update(suggestions.ApplyTo)
	a.json(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"draft":       updated,
	})
}

// GenerateBrief produces the structured PT briefing and the social copy
// trio for the current product.
func (a *App) GenerateBrief(w http.ResponseWriter, r *http.Request) {
	form := a.Forms.Get()
	if strings.TrimSpace(form.ProductName) == "" {
		a.notice(notify.SeverityWarning, "Informe o nome do produto antes de gerar o briefing.")
		a.error(w, http.StatusUnprocessableEntity, "validation", "product name required")
		return
	}
	brief, err := a.Gateway.StructuredBrief(r.Context(), form.ProductName)
	if err != nil {
		a.fail(w, err, "brief generation failed")
		return
	}
	updated := a.Forms.Update(func(f *domain.FormData) {
		f.FinalBriefPt = brief.BriefPt
		f.BriefingStatus = domain.BriefingAuto
		f.SocialCopyTitle = brief.Copy.Title
		f.SocialCopySubtitle = brief.Copy.Subtitle
		f.SocialCopyOffer = brief.Copy.Offer
	})
	a.json(w, http.StatusOK, updated)
}

// AnalyzeProduct runs image analysis over the hero reference and stores the
// result as the draft's image notes.
func (a *App) AnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	form := a.Forms.Get()
	hero := domain.Hero(form.ReferenceImages)
	if hero == nil {
		a.error(w, http.StatusUnprocessableEntity, "validation", "a hero reference image is required")
		return
	}
	analysis, err := a.Gateway.AnalyzeProduct(r.Context(), genai.Inline{
		MIMEType: hero.MIMEType,
		Data:     hero.Data,
	})
	if err != nil {
		a.fail(w, err, "product analysis failed")
		return
	}
	updated := a.Forms.Update(func(f *domain.FormData) {
		f.ImageNotes = analysis
	})
	a.json(w, http.StatusOK, map[string]any{
		"analysis": analysis,
		"draft":    updated,
	})
}

type correctTextRequest struct {
	Text string `json:"text"`
}

// CorrectText exposes the orthography pass used by the pipeline so the
// wizard can offer it on free-text fields.
func (a *App) CorrectText(w http.ResponseWriter, r *http.Request) {
	var req correctTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	corrected, err := a.Gateway.CorrectText(r.Context(), req.Text)
	if err != nil {
		a.fail(w, err, "text correction failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"text": corrected})
}

func parseCount(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return fallback
}

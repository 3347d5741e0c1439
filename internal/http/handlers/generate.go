package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/notify"
	"studio/internal/providers/genai"
)

// Generate creates prompt variations from the current draft and queues them
// for rendering. An empty product name is rejected before any state change.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	a.generateBatch(w, r, domain.StatusQueued)
}

// GenerateDrafts creates prompt variations that stay as drafts until the
// user queues them.
func (a *App) GenerateDrafts(w http.ResponseWriter, r *http.Request) {
	a.generateBatch(w, r, domain.StatusDraft)
}

func (a *App) generateBatch(w http.ResponseWriter, r *http.Request, status domain.ItemStatus) {
	form := a.Forms.Get()
	if strings.TrimSpace(form.ProductName) == "" {
		a.notice(notify.SeverityWarning, "Informe o nome do produto antes de gerar.")
		a.error(w, http.StatusUnprocessableEntity, "validation", "product name required")
		return
	}

	var hero *genai.Inline
	if h := domain.Hero(form.ReferenceImages); h != nil {
		hero = &genai.Inline{MIMEType: h.MIMEType, Data: h.Data}
	}

	count := parseCount(r.URL.Query().Get("count"), 2)
	variants, err := a.Gateway.CreativeVariants(r.Context(), gateway.VariantRequest{
		ProductName:           form.ProductName,
		Material:              form.Material,
		UserBrief:             form.BriefingText(),
		CustomPersonalization: form.CustomPersonalization,
		Hero:                  hero,
		Count:                 count,
	})
	if err != nil {
		a.notice(notify.SeverityError, "Falha ao gerar variações criativas.")
		a.fail(w, err, "variant generation failed")
		return
	}

	now := time.Now().UTC()
	items := make([]domain.GalleryItem, 0, len(variants))
	for _, variant := range variants {
		items = append(items, domain.NewGalleryItem(uuid.NewString(), now, form, variant, status))
	}
	a.Scheduler.Enqueue(items)

	if status == domain.StatusQueued {
		a.notice(notify.SeveritySuccess, fmt.Sprintf("%d variações adicionadas à fila.", len(items)))
	} else {
		a.notice(notify.SeveritySuccess, fmt.Sprintf("%d rascunhos criados.", len(items)))
	}
	a.json(w, http.StatusCreated, items)
}

// QueueAll flips every draft item to queued.
func (a *App) QueueAll(w http.ResponseWriter, r *http.Request) {
	moved := a.Scheduler.QueueAll()
	if moved > 0 {
		a.notice(notify.SeverityInfo, fmt.Sprintf("%d rascunhos enviados para a fila.", moved))
	}
	a.json(w, http.StatusOK, map[string]int{"queued": moved})
}

// RetryItem re-queues one failed item.
func (a *App) RetryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Scheduler.Retry(id); err != nil {
		a.fail(w, err, "retry failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"id": id, "status": string(domain.StatusQueued)})
}

// RetryErrors re-queues every failed item.
func (a *App) RetryErrors(w http.ResponseWriter, r *http.Request) {
	moved := a.Scheduler.RetryErrors()
	if moved > 0 {
		a.notice(notify.SeverityInfo, fmt.Sprintf("%d itens com erro voltaram para a fila.", moved))
	}
	a.json(w, http.StatusOK, map[string]int{"queued": moved})
}

// RegenerateItem clones a finished item into a fresh queued render.
func (a *App) RegenerateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	newID, err := a.Scheduler.Regenerate(id)
	if err != nil {
		a.fail(w, err, "regenerate failed")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"id": newID, "status": string(domain.StatusQueued)})
}

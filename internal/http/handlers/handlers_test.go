package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/notify"
	"studio/internal/render"
	"studio/internal/store"
)

type nullDrafts struct{}

func (nullDrafts) Load(context.Context) (*domain.FormData, error) { return nil, nil }
func (nullDrafts) Save(context.Context, domain.FormData) error    { return nil }

type noopPipeline struct{}

func (noopPipeline) Run(context.Context, domain.GalleryItem) (render.Result, error) {
	return render.Result{}, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	forms := store.NewFormStore(domain.NewFormData(), nullDrafts{}, time.Hour, zerolog.Nop())
	t.Cleanup(forms.Close)

	scheduler := render.New(render.Options{Pipeline: noopPipeline{}, Logger: zerolog.Nop()})
	scheduler.Start(nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = scheduler.Close(ctx)
	})

	return &App{
		Forms:     forms,
		Scheduler: scheduler,
		Notices:   notify.NewCenter(10, time.Minute),
		Logger:    zerolog.Nop(),
	}
}

func TestGenerateRejectsEmptyProductName(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/v1/gallery/generate", nil)
	rr := httptest.NewRecorder()
	app.Generate(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status code: got %d, want 422", rr.Code)
	}
	if items := app.Scheduler.Items(); len(items) != 0 {
		t.Fatalf("gallery changed on rejected generate: %d items", len(items))
	}

	notices := app.Notices.Active()
	if len(notices) != 1 || notices[0].Severity != notify.SeverityWarning {
		t.Fatalf("expected one warning notice, got %+v", notices)
	}
}

func TestPutDraftRestoresFixedRules(t *testing.T) {
	app := newTestApp(t)

	body := `{"productName":"Porta-copos","baseBrief":"tentativa de sobrescrever"}`
	req := httptest.NewRequest("PUT", "/v1/draft", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.PutDraft(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var form domain.FormData
	if err := json.NewDecoder(rr.Body).Decode(&form); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if form.ProductName != "Porta-copos" {
		t.Fatalf("product name = %q", form.ProductName)
	}
	if form.BaseBrief != domain.BaseBriefText {
		t.Fatal("client overwrote the fixed visual rules")
	}
}

func TestResetDraftRestoresInitialState(t *testing.T) {
	app := newTestApp(t)
	app.Forms.Update(func(f *domain.FormData) { f.ProductName = "Algo" })

	req := httptest.NewRequest("POST", "/v1/draft/reset", nil)
	rr := httptest.NewRecorder()
	app.ResetDraft(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if got := app.Forms.Get(); got.ProductName != "" || got.Objective != domain.ModeCatalog {
		t.Fatalf("draft not reset: %+v", got)
	}
}

func TestRetryItemUnknownIDIs404(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/v1/gallery/ghost/retry", nil)
	rr := httptest.NewRecorder()
	app.RetryItem(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status code: got %d, want 404", rr.Code)
	}
}

func TestAddReferenceImageEnforcesSingleHero(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{
		`{"data":"AQ==","mimeType":"image/png","isHero":true}`,
		`{"data":"Ag==","mimeType":"image/png","isHero":true}`,
	} {
		req := httptest.NewRequest("POST", "/v1/draft/images", strings.NewReader(body))
		rr := httptest.NewRecorder()
		app.AddReferenceImage(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
		}
	}

	refs := app.Forms.Get().ReferenceImages
	heroes := 0
	for _, ref := range refs {
		if ref.IsHero {
			heroes++
		}
	}
	if len(refs) != 2 || heroes != 1 {
		t.Fatalf("refs = %d, heroes = %d, want 2 refs with a single hero", len(refs), heroes)
	}
	if !refs[1].IsHero {
		t.Fatal("newest hero upload did not take over the hero flag")
	}
}

func TestHealthReportsGalleryCounts(t *testing.T) {
	app := newTestApp(t)

	form := domain.NewFormData()
	form.ProductName = "Caneca"
	variant := domain.GeneratedPrompt{PromptPt: "Caneca sobre mesa"}
	app.Scheduler.Enqueue([]domain.GalleryItem{
		domain.NewGalleryItem("d1", time.Now().UTC(), form, variant, domain.StatusDraft),
		domain.NewGalleryItem("d2", time.Now().UTC(), form, variant, domain.StatusDraft),
	})

	req := httptest.NewRequest("GET", "/v1/healthz", nil)
	rr := httptest.NewRecorder()
	app.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var payload struct {
		Status  string                    `json:"status"`
		Gallery map[domain.ItemStatus]int `json:"gallery"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("status = %q", payload.Status)
	}
	if payload.Gallery[domain.StatusDraft] != 2 {
		t.Fatalf("draft count = %d, want 2", payload.Gallery[domain.StatusDraft])
	}
}

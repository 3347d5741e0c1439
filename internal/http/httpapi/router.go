package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// Options carries the router-level knobs.
type Options struct {
	Logger             zerolog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/draft", func(r chi.Router) {
		r.Get("/", app.GetDraft)
		r.Put("/", app.PutDraft)
		r.Post("/reset", app.ResetDraft)
		r.Post("/images", app.AddReferenceImage)
		r.Delete("/images/{id}", app.RemoveReferenceImage)
		r.Post("/autocomplete", app.Autocomplete)
		r.Post("/brief", app.GenerateBrief)
		r.Post("/analyze", app.AnalyzeProduct)
	})

	r.Post("/v1/ai/correct", app.CorrectText)

	r.Route("/v1/gallery", func(r chi.Router) {
		r.Get("/", app.ListGallery)
		r.Post("/generate", app.Generate)
		r.Post("/generate-drafts", app.GenerateDrafts)
		r.Post("/queue-all", app.QueueAll)
		r.Post("/retry-errors", app.RetryErrors)
		r.Post("/{id}/retry", app.RetryItem)
		r.Post("/{id}/regenerate", app.RegenerateItem)
		r.Get("/{id}/image", app.GalleryImage)
	})

	r.Get("/v1/history", app.ListHistory)

	r.Route("/v1/ambiences", func(r chi.Router) {
		r.Get("/", app.ListAmbiences)
		r.Post("/", app.SaveAmbience)
		r.Delete("/{id}", app.DeleteAmbience)
		r.Post("/{id}/select", app.SelectAmbience)
	})

	r.Route("/v1/presets", func(r chi.Router) {
		r.Get("/", app.ListPresets)
		r.Post("/", app.SavePreset)
		r.Post("/{id}/apply", app.ApplyPreset)
		r.Delete("/{id}", app.DeletePreset)
	})

	r.Route("/v1/backup", func(r chi.Router) {
		r.Get("/export", app.ExportBackup)
		r.Post("/import", app.ImportBackup)
	})

	r.Route("/v1/notices", func(r chi.Router) {
		r.Get("/", app.ListNotices)
		r.Delete("/{id}", app.DismissNotice)
	})

	return r
}

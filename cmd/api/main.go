package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"studio/internal/adapter/repo"
	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/notify"
	"studio/internal/providers/genai"
	"studio/internal/render"
	"studio/internal/storage"
	"studio/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := repo.EnsureSchema(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open file store")
	}

	galleryRepo := repo.NewGalleryRepository(dbpool)
	draftRepo := repo.NewDraftRepository(dbpool)
	historyRepo := repo.NewHistoryRepository(dbpool)
	ambienceRepo := repo.NewAmbienceRepository(dbpool)
	presetRepo := repo.NewPresetRepository(dbpool)

	seedSystemPresets(ctx, presetRepo, logger)

	// Gallery and draft load in parallel; a persistence failure degrades to
	// an empty state instead of refusing to start.
	var (
		initialItems []domain.GalleryItem
		initialDraft *domain.FormData
	)
	g, loadCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := galleryRepo.Load(loadCtx)
		if err != nil {
			logger.Warn().Err(err).Msg("gallery load failed, starting empty")
			return nil
		}
		initialItems = items
		return nil
	})
	g.Go(func() error {
		draft, err := draftRepo.Load(loadCtx)
		if err != nil {
			logger.Warn().Err(err).Msg("draft load failed, starting fresh")
			return nil
		}
		initialDraft = draft
		return nil
	})
	_ = g.Wait()

	draft := domain.NewFormData()
	if initialDraft != nil {
		draft = *initialDraft
		draft.BaseBrief = domain.BaseBriefText
	}

	forms := store.NewFormStore(draft, draftRepo, cfg.DraftDebounce, logger)
	defer forms.Close()

	notices := notify.NewCenter(50, cfg.NoticeTTL)

	client := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		Logger:     &logger,
		MaxRetries: cfg.GeminiMaxRetries,
	})
	aiGateway := gateway.New(client, logger)

	pipeline := render.NewPipeline(aiGateway, aiGateway, fileStore, historyRepo, logger)

	var galleryPersist *store.Debouncer
	scheduler := render.New(render.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		Pipeline:       pipeline,
		Persist:        func() { galleryPersist.Trigger() },
		Notify:         func(severity, message string) { notices.Push(severity, message) },
		Logger:         logger,
	})
	galleryPersist = store.NewDebouncer(cfg.GalleryDebounce, func() {
		items := scheduler.Items()
		if items == nil {
			return
		}
		saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := galleryRepo.Save(saveCtx, items); err != nil {
			logger.Warn().Err(err).Msg("gallery save failed")
		}
	})
	defer galleryPersist.Close()
	scheduler.Start(initialItems)

	backup := store.NewBackupService(presetRepo, ambienceRepo, historyRepo, forms, logger)

	app := &handlers.App{
		Forms:     forms,
		Scheduler: scheduler,
		Gateway:   aiGateway,
		Backup:    backup,
		Notices:   notices,
		Files:     fileStore,
		Ambiences: ambienceRepo,
		Presets:   presetRepo,
		History:   historyRepo,
		Logger:    logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		AllowedOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// The gallery flush must follow the drain: items that settle while the
	// scheduler closes are only visible in the post-close snapshot.
	if err := scheduler.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to drain scheduler")
	}
	galleryPersist.Flush()
	forms.Flush()
	logger.Info().Msg("server stopped")
}

func seedSystemPresets(ctx context.Context, presets domain.PresetRepository, logger infra.Logger) {
	for _, preset := range domain.SystemPresets(time.Now().UTC()) {
		if err := presets.Save(ctx, preset); err != nil {
			logger.Warn().Err(err).Str("preset_id", preset.ID).Msg("system preset seed failed")
		}
	}
}

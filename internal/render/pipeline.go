// Package render owns the gallery collection: the per-item render pipeline
// and the scheduler that drives it under a global concurrency cap.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/assembler"
	"studio/internal/domain"
	"studio/internal/providers/genai"
)

// TextService is the slice of the AI gateway the pipeline uses for text
// stages.
type TextService interface {
	CorrectText(ctx context.Context, text string) (string, error)
	TranslatePrompt(ctx context.Context, promptPt string) (string, error)
}

// ImageService synthesizes the final image.
type ImageService interface {
	Synthesize(ctx context.Context, finalPrompt string, refs []domain.ReferenceImage, aspect domain.AspectRatio) (genai.Inline, error)
}

// BlobStore persists rendered image bytes and returns the canonical key.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Result carries the fields the pipeline writes back onto an item on
// success.
type Result struct {
	PromptPt      string
	NegativePt    string
	PromptEn      string
	NegativeEn    string
	FinalPromptEn string
	ImageKey      string
	ImageMIME     string
}

// Pipeline executes the stage sequence for one item: correct PT texts,
// translate and assemble the technical prompt, synthesize the image, store
// it, and append the history record. Stage failures are returned to the
// scheduler; they never panic and never touch other items.
type Pipeline struct {
	text    TextService
	images  ImageService
	blobs   BlobStore
	history domain.HistoryRepository
	logger  zerolog.Logger
}

// NewPipeline wires the pipeline dependencies. history and blobs may be nil
// in tests.
func NewPipeline(text TextService, images ImageService, blobs BlobStore, history domain.HistoryRepository, logger zerolog.Logger) *Pipeline {
	return &Pipeline{text: text, images: images, blobs: blobs, history: history, logger: logger}
}

// Run processes a snapshot of one item. The stages await strictly
// sequentially; the first failing stage aborts the rest.
func (p *Pipeline) Run(ctx context.Context, item domain.GalleryItem) (Result, error) {
	promptPt, err := p.text.CorrectText(ctx, item.Data.PromptPt)
	if err != nil {
		return Result{}, fmt.Errorf("correct prompt: %w", err)
	}
	negativePt, err := p.text.CorrectText(ctx, item.Data.NegativePt)
	if err != nil {
		return Result{}, fmt.Errorf("correct negative prompt: %w", err)
	}

	promptEn, err := p.text.TranslatePrompt(ctx, promptPt)
	if err != nil {
		return Result{}, fmt.Errorf("translate prompt: %w", err)
	}
	materialDescriptor := assembler.MaterialDescriptor(item.Material, item.ProductName)
	subject := assembler.Subject(item.ProductName, item.Material, promptEn)
	finalPromptEn := assembler.FinalPrompt(subject, materialDescriptor, item.CreationSettings, item.AspectRatio)
	negativeEn := assembler.NegativePrompt(negativePt)

	img, err := p.images.Synthesize(ctx, finalPromptEn, item.ReferenceImages, item.AspectRatio)
	if err != nil {
		return Result{}, fmt.Errorf("synthesize image: %w", err)
	}

	key := renderKey(item.ID, img.MIMEType)
	if p.blobs != nil {
		stored, err := p.blobs.Write(ctx, key, img.Data)
		if err != nil {
			return Result{}, fmt.Errorf("store image: %w", err)
		}
		key = stored
	}

	result := Result{
		PromptPt:      promptPt,
		NegativePt:    negativePt,
		PromptEn:      promptEn,
		NegativeEn:    negativeEn,
		FinalPromptEn: finalPromptEn,
		ImageKey:      key,
		ImageMIME:     img.MIMEType,
	}
	p.appendHistory(item, result)
	return result, nil
}

// appendHistory records the completed render. The append is fire-and-forget
// relative to the success path: a history failure is logged, never surfaced
// to the item.
func (p *Pipeline) appendHistory(item domain.GalleryItem, result Result) {
	if p.history == nil {
		return
	}
	record := domain.HistoryMetadata{
		ID:            uuid.NewString(),
		Date:          time.Now().UTC(),
		ProductName:   item.ProductName,
		PresetUsed:    presetLabel(item.CreationSettings),
		AmbienceTitle: ambienceLabel(item.CreationSettings),
		AspectRatio:   string(item.AspectRatio),
		PromptFinalEn: result.FinalPromptEn,
		Tags:          []string{presetLabel(item.CreationSettings)},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.history.Append(ctx, record); err != nil {
			p.logger.Warn().Err(err).Str("item_id", item.ID).Msg("render: history append failed")
		}
	}()
}

func presetLabel(s domain.CreationSettings) string {
	if s.Objective == "" {
		return "Geral"
	}
	return string(s.Objective)
}

func ambienceLabel(s domain.CreationSettings) string {
	if desc := strings.TrimSpace(s.AmbienceDescription); desc != "" {
		return desc
	}
	return "Estúdio"
}

func renderKey(itemID, mime string) string {
	return fmt.Sprintf("rendered/%s/art%s", itemID, extensionForMIME(mime))
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

package domain

import "context"

// GalleryRepository persists the item collection as one durable document.
type GalleryRepository interface {
	Load(ctx context.Context) ([]GalleryItem, error)
	Save(ctx context.Context, items []GalleryItem) error
}

// DraftRepository persists the current draft. Load returns nil when no draft
// has ever been saved.
type DraftRepository interface {
	Load(ctx context.Context) (*FormData, error)
	Save(ctx context.Context, form FormData) error
}

// HistoryRepository is the append-only render history log.
type HistoryRepository interface {
	Append(ctx context.Context, record HistoryMetadata) error
	List(ctx context.Context) ([]HistoryMetadata, error)
}

// AmbienceRepository stores user-custom ambience presets.
type AmbienceRepository interface {
	List(ctx context.Context) ([]Ambience, error)
	Save(ctx context.Context, ambience Ambience) error
	Delete(ctx context.Context, id string) error
}

// PresetRepository stores studio presets, system and user alike.
type PresetRepository interface {
	List(ctx context.Context) ([]Preset, error)
	Save(ctx context.Context, preset Preset) error
	Delete(ctx context.Context, id string) error
}

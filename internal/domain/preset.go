package domain

import "time"

// Preset is a saved, reusable studio configuration. System presets ship with
// the application; user presets are created from the current draft.
type Preset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"isSystem"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Mode               AppMode            `json:"mode"`
	Style              ArtStyle           `json:"style"`
	MarketingDirection MarketingDirection `json:"marketingDirection"`
	CopyTone           MarketingTone      `json:"copyTone"`

	AspectRatio       AspectRatio    `json:"aspectRatio"`
	Angle             CameraAngle    `json:"angle"`
	Shadow            ShadowType     `json:"shadow"`
	Background        BackgroundType `json:"background"`
	CatalogBackground string         `json:"catalogBackground,omitempty"`

	PropsEnabled bool     `json:"propsEnabled"`
	PropsList    []string `json:"propsList"`
	PropsPolicy  string   `json:"propsPolicy"`

	UseReferenceImages  bool `json:"useReferenceImages"`
	LockProductFidelity bool `json:"lockProductFidelity"`

	DefaultRotation     int  `json:"defaultRotation"`
	ShowNegativePrompts bool `json:"showNegativePrompts"`
}

// SystemPresets returns the built-in presets seeded on first run.
func SystemPresets(now time.Time) []Preset {
	return []Preset{
		{
			ID:                  "sys_catalogo_ml",
			Name:                "Catálogo — Mercado Livre (Branco)",
			Description:         "Fundo branco puro, iluminação técnica softbox, foco total, nitidez 8k.",
			IsSystem:            true,
			CreatedAt:           now,
			UpdatedAt:           now,
			Mode:                ModeCatalog,
			Style:               StyleMinimalist,
			MarketingDirection:  DirectionReservedSpace,
			CopyTone:            ToneSales,
			AspectRatio:         AspectSquare,
			Angle:               AngleThreeQuarters,
			Shadow:              ShadowSoft,
			Background:          BackgroundWhite,
			PropsList:           []string{},
			PropsPolicy:         "restrito",
			UseReferenceImages:  true,
			LockProductFidelity: true,
			ShowNegativePrompts: true,
		},
		{
			ID:                  "sys_social_scene",
			Name:                "Post Social — Premium Lifestyle",
			Description:         "Ambientação realista, iluminação cinematográfica, carnes e ervas.",
			IsSystem:            true,
			CreatedAt:           now,
			UpdatedAt:           now,
			Mode:                ModeSocial,
			Style:               StyleScene,
			MarketingDirection:  DirectionReservedSpace,
			CopyTone:            ToneCreative,
			AspectRatio:         AspectPortrait,
			Angle:               AngleThreeQuarters,
			Shadow:              ShadowMedium,
			Background:          BackgroundSceneContext,
			PropsEnabled:        true,
			PropsList:           []string{"Carne fatiada", "Sal grosso", "Ervas"},
			PropsPolicy:         "livre",
			UseReferenceImages:  true,
			LockProductFidelity: true,
			ShowNegativePrompts: true,
		},
	}
}

// HistoryMetadata is one append-only record of a completed render.
type HistoryMetadata struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	ProductName   string    `json:"productName"`
	PresetUsed    string    `json:"presetUsed"`
	AmbienceTitle string    `json:"ambienceTitle,omitempty"`
	AspectRatio   string    `json:"aspectRatio"`
	PromptFinalEn string    `json:"promptFinalEn"`
	Tags          []string  `json:"tags"`
}

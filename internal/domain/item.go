package domain

import "time"

// ItemStatus enumerates the gallery item lifecycle states.
type ItemStatus string

const (
	StatusDraft     ItemStatus = "draft"
	StatusQueued    ItemStatus = "queued"
	StatusRendering ItemStatus = "rendering"
	StatusCompleted ItemStatus = "completed"
	StatusError     ItemStatus = "error"
)

// GeneratedPrompt is the creative prompt payload of a gallery item. The PT
// fields come from the variant generator; the EN fields are populated by the
// render pipeline on success.
type GeneratedPrompt struct {
	Layout        string `json:"layout"`
	PromptPt      string `json:"promptPt"`
	NegativePt    string `json:"negativePt"`
	PromptEn      string `json:"promptEn,omitempty"`
	NegativeEn    string `json:"negativeEn,omitempty"`
	Highlights    string `json:"highlights,omitempty"`
	CopyTitle     string `json:"copyTitle,omitempty"`
	CopySubtitle  string `json:"copySubtitle,omitempty"`
	CopyOffer     string `json:"copyOffer,omitempty"`
	FinalPromptEn string `json:"finalPromptEn,omitempty"`
}

// CreationSettings is the frozen snapshot of the styling values active when
// an item was created. It is never re-read from the live draft, so a render
// reproduces the configuration the user saw at generation time.
type CreationSettings struct {
	Objective             AppMode            `json:"objective"`
	Background            BackgroundType     `json:"background"`
	CatalogBackground     string             `json:"catalogBackground,omitempty"`
	Shadow                ShadowType         `json:"shadow"`
	Angle                 CameraAngle        `json:"angle"`
	Props                 []string           `json:"props"`
	CustomProps           string             `json:"customProps,omitempty"`
	PropsEnabled          bool               `json:"propsEnabled"`
	LockProduct           bool               `json:"lockProduct"`
	AmbienceDescription   string             `json:"ambienceDescription,omitempty"`
	Tone                  MarketingTone      `json:"tone,omitempty"`
	TextPresence          TextPresence       `json:"textPresence,omitempty"`
	CustomPersonalization string             `json:"customPersonalization,omitempty"`
	MarketingDirection    MarketingDirection `json:"marketingDirection,omitempty"`
}

// GalleryItem is the unit of render work and its result. Items are created
// by prompt generation, mutated in place by the render pipeline, and never
// deleted automatically.
type GalleryItem struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	Status           ItemStatus       `json:"status"`
	Data             GeneratedPrompt  `json:"data"`
	ReferenceImages  []ReferenceImage `json:"referenceImages"`
	CreationSettings CreationSettings `json:"creationSettings"`
	AspectRatio      AspectRatio      `json:"aspectRatio"`
	Rotation         int              `json:"rotation"`
	ImageKey         string           `json:"imageKey,omitempty"`
	ImageMIME        string           `json:"imageMime,omitempty"`
	ErrorMessage     string           `json:"errorMessage,omitempty"`
	ProductName      string           `json:"productName,omitempty"`
	Material         string           `json:"material,omitempty"`
	IsRegenerated    bool             `json:"isRegenerated,omitempty"`
}

// NewGalleryItem freezes the current draft into a new item. Reference
// images are copied and settings are snapshotted so later draft edits never
// reach an already created item.
func NewGalleryItem(id string, now time.Time, form FormData, variant GeneratedPrompt, status ItemStatus) GalleryItem {
	settings := CreationSettings{
		Objective:             form.Objective,
		Background:            form.Background,
		CatalogBackground:     form.CatalogBackground,
		Shadow:                form.Shadow,
		Angle:                 form.Angle,
		Props:                 append([]string(nil), form.Props...),
		CustomProps:           form.CustomProps,
		PropsEnabled:          len(form.Props) > 0,
		LockProduct:           form.LockProduct,
		Tone:                  form.Tone,
		TextPresence:          form.TextPresence,
		CustomPersonalization: form.CustomPersonalization,
		MarketingDirection:    form.MarketingDirection,
	}
	if ambience := form.ActiveAmbience(); ambience != nil {
		settings.AmbienceDescription = ambience.Description
	}
	return GalleryItem{
		ID:               id,
		Timestamp:        now,
		Status:           status,
		Data:             variant,
		ReferenceImages:  cloneRefs(form.ReferenceImages),
		CreationSettings: settings,
		AspectRatio:      form.DefaultAspectRatio,
		Rotation:         form.DefaultRotation,
		ProductName:      form.ProductName,
		Material:         form.Material,
	}
}

// Clone returns a deep copy of the item so callers can hand snapshots across
// goroutine boundaries without sharing mutable slices.
func (g GalleryItem) Clone() GalleryItem {
	out := g
	out.ReferenceImages = cloneRefs(g.ReferenceImages)
	out.CreationSettings.Props = append([]string(nil), g.CreationSettings.Props...)
	return out
}

func cloneRefs(refs []ReferenceImage) []ReferenceImage {
	if refs == nil {
		return nil
	}
	out := make([]ReferenceImage, len(refs))
	copy(out, refs)
	for i := range out {
		out[i].Data = append([]byte(nil), refs[i].Data...)
	}
	return out
}

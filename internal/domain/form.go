package domain

import "strings"

// AppMode selects the studio objective: clean catalog shots or
// contextualized social posts.
type AppMode string

const (
	ModeCatalog AppMode = "Catálogo"
	ModeSocial  AppMode = "Post Social"
)

// ArtStyle enumerates the creative layout families.
type ArtStyle string

const (
	StyleMinimalist ArtStyle = "MINIMALIST"
	StyleBold       ArtStyle = "BOLD"
	StylePromo      ArtStyle = "PROMO"
	StyleHighlight  ArtStyle = "HIGHLIGHT"
	StyleScene      ArtStyle = "SCENE"
)

// MarketingTone enumerates the copywriting tones.
type MarketingTone string

const (
	ToneAttention     MarketingTone = "Chamativo"
	ToneCreative      MarketingTone = "Criativo"
	ToneSales         MarketingTone = "Vendas"
	TonePromotional   MarketingTone = "Promocional"
	ToneMinimalist    MarketingTone = "Minimalista"
	ToneInstitutional MarketingTone = "Institucional"
	ToneEmotional     MarketingTone = "Emocional"
)

// TextPresence controls how much on-image text the layout reserves.
type TextPresence string

const (
	TextLarge   TextPresence = "Texto grande"
	TextMedium  TextPresence = "Texto médio"
	TextSmall   TextPresence = "Texto pequeno"
	TextMinimal TextPresence = "Texto mínimo"
	TextNone    TextPresence = "Sem texto"
)

// CameraAngle enumerates the supported camera positions.
type CameraAngle string

const (
	AngleFront         CameraAngle = "Frente"
	AngleThreeQuarters CameraAngle = "3/4"
	AngleTop           CameraAngle = "Topo"
)

// ShadowType enumerates the lighting/shadow setups.
type ShadowType string

const (
	ShadowContact ShadowType = "Contato"
	ShadowSoft    ShadowType = "Suave"
	ShadowMedium  ShadowType = "Média"
	ShadowStrong  ShadowType = "Forte"
	ShadowNone    ShadowType = "Nenhuma"
)

// BackgroundType enumerates the scene background families.
type BackgroundType string

const (
	BackgroundWhite        BackgroundType = "Branco puro"
	BackgroundGrey         BackgroundType = "Cinza studio"
	BackgroundOffWhite     BackgroundType = "Off-white quente"
	BackgroundMarble       BackgroundType = "Mármore claro"
	BackgroundBlackPremium BackgroundType = "Preto premium"
	BackgroundSceneContext BackgroundType = "Cena contextualizada"
)

// MarketingDirection decides whether copy is burned into the art or a
// reserved space is left for a text layer.
type MarketingDirection string

const (
	DirectionReservedSpace  MarketingDirection = "Espaço reservado"
	DirectionIntegratedText MarketingDirection = "Texto integrado"
)

// BriefingStatus tracks how the final PT briefing was produced.
type BriefingStatus string

const (
	BriefingEmpty  BriefingStatus = "vazio"
	BriefingAuto   BriefingStatus = "automático"
	BriefingCustom BriefingStatus = "personalizado"
)

// AspectRatio is one of the supported output framings.
type AspectRatio string

const (
	AspectSquare     AspectRatio = "1:1"
	AspectPortrait   AspectRatio = "3:4"
	AspectFeed       AspectRatio = "4:5"
	AspectStory      AspectRatio = "9:16"
	AspectWidescreen AspectRatio = "16:9"
)

// ReferenceUsage describes what a reference image contributes.
type ReferenceUsage string

const (
	UsageOutline         ReferenceUsage = "Contorno"
	UsageMeasurements    ReferenceUsage = "Medidas"
	UsagePersonalization ReferenceUsage = "Personalização"
	UsageShape           ReferenceUsage = "Formato"
)

// ReferenceImage is an attached product photo. At most one image in a set
// carries IsHero; the hero anchors fidelity-locked generation.
type ReferenceImage struct {
	ID       string         `json:"id"`
	Data     []byte         `json:"data"`
	MIMEType string         `json:"mimeType"`
	FileName string         `json:"fileName"`
	Width    int            `json:"width,omitempty"`
	Height   int            `json:"height,omitempty"`
	IsHero   bool           `json:"isHero"`
	Usage    ReferenceUsage `json:"usageType"`
}

// Ambience is a named scene preset, either system-suggested or user-custom.
// Gallery items copy the description text at creation; later ambience edits
// do not alter prior items.
type Ambience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCustom    bool   `json:"isCustom,omitempty"`
	UseCount    int    `json:"useCount,omitempty"`
}

// FormData is the single mutable draft driving generation. It has no
// identity beyond "the current draft" and is persisted on a debounce timer.
type FormData struct {
	ProductName string `json:"productName"`
	Material    string `json:"material"`

	BaseBrief      string         `json:"baseBrief"`
	UserBrief      string         `json:"userBrief"`
	FinalBriefPt   string         `json:"finalBriefPt"`
	BriefingStatus BriefingStatus `json:"briefingStatus"`

	Objective          AppMode            `json:"objective"`
	Style              ArtStyle           `json:"style"`
	MarketingDirection MarketingDirection `json:"marketingDirection"`
	Tone               MarketingTone      `json:"tone"`
	TextPresence       TextPresence       `json:"textPresence"`
	Angle              CameraAngle        `json:"angle"`
	Shadow             ShadowType         `json:"shadow"`
	Background         BackgroundType     `json:"background"`
	CatalogBackground  string             `json:"catalogBackground,omitempty"`
	Props              []string           `json:"props"`
	CustomProps        string             `json:"customProps"`

	SocialCopyTitle    string `json:"socialCopyTitle"`
	SocialCopySubtitle string `json:"socialCopySubtitle"`
	SocialCopyOffer    string `json:"socialCopyOffer"`

	SelectedAmbienceID string     `json:"selectedAmbienceId,omitempty"`
	SuggestedAmbiences []Ambience `json:"suggestedAmbiences"`
	CustomAmbiences    []Ambience `json:"customAmbiences"`

	ReferenceImages    []ReferenceImage `json:"referenceImages"`
	UseRefImages       bool             `json:"useRefImages"`
	LockProduct        bool             `json:"lockProduct"`
	PrioritizeFidelity bool             `json:"prioritizeFidelity"`
	ImageNotes         string           `json:"imageNotes"`

	PersonalizationVariations string `json:"personalizationVariations"`
	ActiveVariation           string `json:"activeVariation"`
	CustomPersonalization     string `json:"customPersonalization"`

	DefaultAspectRatio AspectRatio `json:"defaultAspectRatio"`
	DefaultRotation    int         `json:"defaultRotation"`
}

// BaseBriefText carries the fixed visual rules prepended to every briefing.
const BaseBriefText = `[REGRAS VISUAIS FIXAS - INOVAÇÃO ENTALHE]:
1. Fotografia profissional de estúdio, alta resolução (8k), texturas realistas.
2. Iluminação controlada para valorizar o relevo e o material do produto.
3. Sem distorções de lente.
4. Cores e entalhes fiéis ao material original.
5. Limpeza visual absoluta em modo catálogo.`

// NewFormData returns the initial draft state.
func NewFormData() FormData {
	return FormData{
		BaseBrief:          BaseBriefText,
		BriefingStatus:     BriefingEmpty,
		Objective:          ModeCatalog,
		Style:              StyleMinimalist,
		MarketingDirection: DirectionReservedSpace,
		Tone:               ToneSales,
		TextPresence:       TextMedium,
		Angle:              AngleThreeQuarters,
		Shadow:             ShadowSoft,
		Background:         BackgroundWhite,
		Props:              []string{},
		SuggestedAmbiences: []Ambience{},
		CustomAmbiences:    []Ambience{},
		ReferenceImages:    []ReferenceImage{},
		LockProduct:        true,
		PrioritizeFidelity: true,
		DefaultAspectRatio: AspectSquare,
	}
}

// Hero returns the hero reference image, or nil if none is marked.
func Hero(refs []ReferenceImage) *ReferenceImage {
	for i := range refs {
		if refs[i].IsHero {
			return &refs[i]
		}
	}
	return nil
}

// NormalizeHero enforces the single-hero invariant: when at least one image
// exists exactly one is hero; removing the hero promotes the first remaining.
func NormalizeHero(refs []ReferenceImage) []ReferenceImage {
	if len(refs) == 0 {
		return refs
	}
	heroSeen := false
	for i := range refs {
		if refs[i].IsHero {
			if heroSeen {
				refs[i].IsHero = false
				continue
			}
			heroSeen = true
		}
	}
	if !heroSeen {
		refs[0].IsHero = true
	}
	return refs
}

// Clone deep-copies the draft so callers can hold a snapshot while the
// original keeps mutating.
func (f FormData) Clone() FormData {
	out := f
	out.Props = append([]string(nil), f.Props...)
	out.SuggestedAmbiences = append([]Ambience(nil), f.SuggestedAmbiences...)
	out.CustomAmbiences = append([]Ambience(nil), f.CustomAmbiences...)
	out.ReferenceImages = cloneRefs(f.ReferenceImages)
	return out
}

// ActiveAmbience resolves the selected ambience across suggested and custom
// lists.
func (f *FormData) ActiveAmbience() *Ambience {
	id := strings.TrimSpace(f.SelectedAmbienceID)
	if id == "" {
		return nil
	}
	for i := range f.SuggestedAmbiences {
		if f.SuggestedAmbiences[i].ID == id {
			return &f.SuggestedAmbiences[i]
		}
	}
	for i := range f.CustomAmbiences {
		if f.CustomAmbiences[i].ID == id {
			return &f.CustomAmbiences[i]
		}
	}
	return nil
}

// BriefingText returns the text the AI should reason about, preferring the
// generated final briefing over the raw user notes.
func (f *FormData) BriefingText() string {
	if s := strings.TrimSpace(f.FinalBriefPt); s != "" {
		return s
	}
	return strings.TrimSpace(f.UserBrief)
}

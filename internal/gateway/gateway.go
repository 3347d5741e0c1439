// Package gateway exposes the studio's AI capabilities over the genai
// client: grammar correction, field suggestion, creative variant
// generation, prompt translation, product analysis, and image synthesis.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/genai"
)

// minCorrectableLength is the threshold below which correction is a no-op
// passthrough.
const minCorrectableLength = 5

const correctorSystem = "Você é um revisor de prompts de estúdio fotográfico."

const variantSystem = `Você é um Engenheiro de Prompts Sênior.
ESTRUTURA OBRIGATÓRIA DO PROMPT (PT-BR):
■ PRODUTO: [Descrição do item e material]
■ CENÁRIO: [Ambientação e luz]
■ PERSONALIZAÇÃO: [Texto/Logo/Nomes específicos a serem alterados]
■ PROPS: [Acessórios de cena]
■ ESTILO: [Ângulo e fotografia]

REGRAS:
- Se o usuário pedir para trocar um nome (ex: "Edivaldo por Sergio"), coloque isso claramente em PERSONALIZAÇÃO.
- Mantenha os tópicos separados e limpos.
- Não repita informações entre os tópicos.`

// Gateway bundles the studio AI calls behind one dependency.
type Gateway struct {
	client *genai.Client
	logger zerolog.Logger
}

// New constructs a gateway over an already configured client.
func New(client *genai.Client, logger zerolog.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// CorrectText fixes PT-BR grammar while keeping the topic structure. Inputs
// that are empty or shorter than five characters pass through untouched, and
// an empty model response falls back to the original text.
func (g *Gateway) CorrectText(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < minCorrectableLength {
		return text, nil
	}
	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		System: correctorSystem,
		Prompt: fmt.Sprintf("Corrija estritamente a gramática PT-BR deste briefing técnico, mantendo a estrutura de tópicos: %q", text),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return text, nil
	}
	return strings.TrimSpace(out), nil
}

// TranslatePrompt converts a structured PT prompt into technical English,
// preserving the ■ bullet format. Falls back to the input when the model
// returns nothing.
func (g *Gateway) TranslatePrompt(ctx context.Context, promptPt string) (string, error) {
	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		Prompt: fmt.Sprintf("Translate this structured prompt to technical English, maintaining the format with bullet points (■): %q", promptPt),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return promptPt, nil
	}
	return strings.TrimSpace(out), nil
}

// FieldSuggestions is the structured subset of the draft the briefing
// analyzer may propose. Empty fields mean "no suggestion"; the caller never
// overwrites a field the model left blank.
type FieldSuggestions struct {
	Objective  string `json:"objective,omitempty"`
	Angle      string `json:"angle,omitempty"`
	Shadow     string `json:"shadow,omitempty"`
	Background string `json:"background,omitempty"`
	Tone       string `json:"tone,omitempty"`
}

var fieldSuggestionSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "objective": {"type": "STRING"},
    "angle": {"type": "STRING"},
    "shadow": {"type": "STRING"},
    "background": {"type": "STRING"},
    "tone": {"type": "STRING"}
  }
}`)

// SuggestFields analyzes the briefing text and proposes configuration
// values.
func (g *Gateway) SuggestFields(ctx context.Context, briefing string) (FieldSuggestions, error) {
	if strings.TrimSpace(briefing) == "" {
		briefing = "Produto genérico"
	}
	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		Prompt:         fmt.Sprintf("Analise: %q. Sugira JSON: objective (Catálogo ou Post Social), angle, shadow, background, tone.", briefing),
		ResponseSchema: fieldSuggestionSchema,
	})
	if err != nil {
		return FieldSuggestions{}, err
	}
	suggestions, err := parsePayload[FieldSuggestions](out)
	if err != nil {
		return FieldSuggestions{}, fmt.Errorf("decode field suggestions: %w", err)
	}
	return suggestions, nil
}

// ApplyTo writes the recognized suggestions onto the draft. Unknown values
// are dropped so the draft never ends up outside the closed enums.
func (s FieldSuggestions) ApplyTo(f *domain.FormData) {
	switch domain.AppMode(strings.TrimSpace(s.Objective)) {
	case domain.ModeCatalog:
		f.Objective = domain.ModeCatalog
	case domain.ModeSocial:
		f.Objective = domain.ModeSocial
	}
	if v := domain.CameraAngle(strings.TrimSpace(s.Angle)); v == domain.AngleFront || v == domain.AngleThreeQuarters || v == domain.AngleTop {
		f.Angle = v
	}
	switch v := domain.ShadowType(strings.TrimSpace(s.Shadow)); v {
	case domain.ShadowContact, domain.ShadowSoft, domain.ShadowMedium, domain.ShadowStrong, domain.ShadowNone:
		f.Shadow = v
	}
	switch v := domain.BackgroundType(strings.TrimSpace(s.Background)); v {
	case domain.BackgroundWhite, domain.BackgroundGrey, domain.BackgroundOffWhite,
		domain.BackgroundMarble, domain.BackgroundBlackPremium, domain.BackgroundSceneContext:
		f.Background = v
	}
	switch v := domain.MarketingTone(strings.TrimSpace(s.Tone)); v {
	case domain.ToneAttention, domain.ToneCreative, domain.ToneSales, domain.TonePromotional,
		domain.ToneMinimalist, domain.ToneInstitutional, domain.ToneEmotional:
		f.Tone = v
	}
}

// VariantRequest describes a creative variant generation call.
type VariantRequest struct {
	ProductName           string
	Material              string
	UserBrief             string
	CustomPersonalization string
	Hero                  *genai.Inline
	Count                 int
}

type variantPayload struct {
	Layout     string `json:"layout"`
	PromptPt   string `json:"promptPt"`
	NegativePt string `json:"negativePt"`
	Highlights string `json:"highlights"`
}

var variantSchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "layout": {"type": "STRING"},
      "promptPt": {"type": "STRING"},
      "negativePt": {"type": "STRING"},
      "highlights": {"type": "STRING"}
    }
  }
}`)

// CreativeVariants asks for req.Count creative prompt variations following
// the fixed topic structure. The structure is enforced by instruction, not
// by validating the response.
func (g *Gateway) CreativeVariants(ctx context.Context, req VariantRequest) ([]domain.GeneratedPrompt, error) {
	count := req.Count
	if count <= 0 {
		count = 2
	}
	scenario := strings.TrimSpace(req.UserBrief)
	if scenario == "" {
		scenario = "Estúdio profissional"
	}
	personalization := strings.TrimSpace(req.CustomPersonalization)
	if personalization == "" {
		personalization = "Manter original"
	}
	prompt := fmt.Sprintf(`Gere %d variações criativas seguindo a ESTRUTURA acima.
Produto: %s.
Material: %s.
Cenário desejado: %s.
Personalização solicitada: %s.`, count, req.ProductName, req.Material, scenario, personalization)

	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		System:         variantSystem,
		Prompt:         prompt,
		Image:          req.Hero,
		ResponseSchema: variantSchema,
	})
	if err != nil {
		return nil, err
	}
	payloads, err := parsePayload[[]variantPayload](out)
	if err != nil {
		return nil, fmt.Errorf("decode creative variants: %w", err)
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: no creative variants returned", domain.ErrGenerationFailed)
	}
	variants := make([]domain.GeneratedPrompt, 0, len(payloads))
	for _, p := range payloads {
		variants = append(variants, domain.GeneratedPrompt{
			Layout:     p.Layout,
			PromptPt:   p.PromptPt,
			NegativePt: p.NegativePt,
			Highlights: p.Highlights,
		})
	}
	return variants, nil
}

// Brief is the structured briefing the generator produces for a product.
type Brief struct {
	BriefPt string `json:"brief_pt"`
	Copy    struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Offer    string `json:"offer"`
	} `json:"copy_pt"`
}

var briefSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "brief_pt": {"type": "STRING"},
    "copy_pt": {
      "type": "OBJECT",
      "properties": {
        "title": {"type": "STRING"},
        "subtitle": {"type": "STRING"},
        "offer": {"type": "STRING"}
      }
    }
  }
}`)

// StructuredBrief generates the PT briefing plus the social copy trio.
func (g *Gateway) StructuredBrief(ctx context.Context, productName string) (Brief, error) {
	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		Prompt:         fmt.Sprintf("Gere brief_pt e copy_pt (title, subtitle, offer) para %s. JSON format.", productName),
		ResponseSchema: briefSchema,
	})
	if err != nil {
		return Brief{}, err
	}
	brief, err := parsePayload[Brief](out)
	if err != nil {
		return Brief{}, fmt.Errorf("decode structured brief: %w", err)
	}
	return brief, nil
}

// AnalyzeProduct describes the hero product photo so the description can
// anchor later prompt generation.
func (g *Gateway) AnalyzeProduct(ctx context.Context, image genai.Inline) (string, error) {
	out, err := g.client.GenerateText(ctx, genai.TextRequest{
		Prompt: "Descreva objetivamente este produto para um briefing fotográfico: formato, material aparente, cores, acabamento e gravações visíveis. Responda em um parágrafo curto em PT-BR.",
		Image:  &image,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Synthesize renders the final technical prompt, attaching at most the hero
// reference image.
func (g *Gateway) Synthesize(ctx context.Context, finalPrompt string, refs []domain.ReferenceImage, aspect domain.AspectRatio) (genai.Inline, error) {
	var reference *genai.Inline
	if hero := domain.Hero(refs); hero != nil {
		reference = &genai.Inline{MIMEType: hero.MIMEType, Data: hero.Data}
	}
	return g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      finalPrompt,
		Reference:   reference,
		AspectRatio: string(aspect),
	})
}

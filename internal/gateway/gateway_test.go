package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/genai"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func textResponse(text string) *http.Response {
	payload := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(string(body))),
	}
}

func newTestGateway(transport roundTripFunc) *Gateway {
	client := genai.NewClient(genai.Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: transport},
	})
	return New(client, zerolog.Nop())
}

func TestCorrectTextPassthroughBelowThreshold(t *testing.T) {
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected for short input")
		return nil, nil
	})

	for _, input := range []string{"", "   ", "oi", "abcd"} {
		got, err := g.CorrectText(context.Background(), input)
		if err != nil {
			t.Fatalf("CorrectText(%q) returned error: %v", input, err)
		}
		if got != input {
			t.Errorf("CorrectText(%q) = %q, want passthrough", input, got)
		}
	}
}

func TestCorrectTextFallsBackToOriginalOnEmptyResponse(t *testing.T) {
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		return textResponse("   "), nil
	})

	original := "tabua de madera rustica"
	got, err := g.CorrectText(context.Background(), original)
	if err != nil {
		t.Fatalf("CorrectText returned error: %v", err)
	}
	if got != original {
		t.Fatalf("CorrectText = %q, want original text", got)
	}
}

func TestSuggestFieldsAppliesOnlyKnownValues(t *testing.T) {
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		return textResponse(`{"objective":"Post Social","angle":"Topo","shadow":"Inexistente","tone":"Criativo"}`), nil
	})

	suggestions, err := g.SuggestFields(context.Background(), "tábua para churrasco ao ar livre")
	if err != nil {
		t.Fatalf("SuggestFields returned error: %v", err)
	}

	form := domain.NewFormData()
	before := form.Shadow
	suggestions.ApplyTo(&form)

	if form.Objective != domain.ModeSocial {
		t.Errorf("Objective = %q, want %q", form.Objective, domain.ModeSocial)
	}
	if form.Angle != domain.AngleTop {
		t.Errorf("Angle = %q, want %q", form.Angle, domain.AngleTop)
	}
	if form.Shadow != before {
		t.Errorf("unknown shadow value must leave the field untouched, got %q", form.Shadow)
	}
	if form.Tone != domain.ToneCreative {
		t.Errorf("Tone = %q, want %q", form.Tone, domain.ToneCreative)
	}
}

func TestCreativeVariantsParsesFencedJSON(t *testing.T) {
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		body := "```json\n[{\"layout\":\"MINIMALIST\",\"promptPt\":\"■ PRODUTO: tábua\",\"negativePt\":\"fundo sujo\",\"highlights\":\"veios da madeira\"},{\"layout\":\"SCENE\",\"promptPt\":\"■ PRODUTO: tábua na mesa\",\"negativePt\":\"desfoque\",\"highlights\":\"clima rústico\"}]\n```"
		return textResponse(body), nil
	})

	variants, err := g.CreativeVariants(context.Background(), VariantRequest{ProductName: "Tábua", Material: "Madeira", Count: 2})
	if err != nil {
		t.Fatalf("CreativeVariants returned error: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("len(variants) = %d, want 2", len(variants))
	}
	if variants[0].Layout != "MINIMALIST" || variants[1].PromptPt != "■ PRODUTO: tábua na mesa" {
		t.Fatalf("unexpected variants: %+v", variants)
	}
}

func TestCreativeVariantsEmptyListIsError(t *testing.T) {
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		return textResponse("[]"), nil
	})

	_, err := g.CreativeVariants(context.Background(), VariantRequest{ProductName: "Tábua"})
	if err == nil {
		t.Fatal("expected error for empty variant list")
	}
}

func TestSynthesizeSendsOnlyHeroReference(t *testing.T) {
	var captured genaiRequestBody
	g := newTestGateway(func(r *http.Request) (*http.Response, error) {
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &captured); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"aGVsbG8="}}]}}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})

	refs := []domain.ReferenceImage{
		{ID: "a", Data: []byte("other"), MIMEType: "image/jpeg"},
		{ID: "b", Data: []byte("hero"), MIMEType: "image/png", IsHero: true},
	}
	img, err := g.Synthesize(context.Background(), "final prompt", refs, domain.AspectSquare)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", img.MIMEType)
	}

	if len(captured.Contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(captured.Contents))
	}
	var inlineCount int
	for _, p := range captured.Contents[0].Parts {
		if p.InlineData != nil {
			inlineCount++
			if p.InlineData.MIMEType != "image/png" {
				t.Errorf("attached reference MIME = %q, want hero's image/png", p.InlineData.MIMEType)
			}
		}
	}
	if inlineCount != 1 {
		t.Fatalf("attached %d inline images, want only the hero", inlineCount)
	}
}

type genaiRequestBody struct {
	Contents []struct {
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
}

package assembler

import (
	"strings"
	"testing"

	"studio/internal/domain"
)

func catalogSettings() domain.CreationSettings {
	return domain.CreationSettings{
		Objective:   domain.ModeCatalog,
		Background:  domain.BackgroundWhite,
		Shadow:      domain.ShadowSoft,
		Angle:       domain.AngleThreeQuarters,
		LockProduct: true,
	}
}

func TestMaterialDescriptorPriorityOrder(t *testing.T) {
	// Both wood and metal keywords present: wood wins because it is first.
	got := MaterialDescriptor("tábua de madeira com detalhes em metal", "Tábua Gourmet")
	if !strings.Contains(got, "wood grain") {
		t.Fatalf("MaterialDescriptor = %q, want wood descriptor", got)
	}
}

func TestMaterialDescriptorMatchesProductName(t *testing.T) {
	got := MaterialDescriptor("", "Caneca de Inox Personalizada")
	if !strings.Contains(got, "Brushed metal") {
		t.Fatalf("MaterialDescriptor = %q, want metal descriptor", got)
	}
}

func TestMaterialDescriptorNoMatch(t *testing.T) {
	if got := MaterialDescriptor("algodão", "Camiseta"); got != "" {
		t.Fatalf("MaterialDescriptor = %q, want empty", got)
	}
}

func TestFinalPromptDeterministic(t *testing.T) {
	s := catalogSettings()
	a := FinalPrompt("PRODUCT: Tábua de madeira.", MaterialDescriptor("madeira", ""), s, domain.AspectSquare)
	b := FinalPrompt("PRODUCT: Tábua de madeira.", MaterialDescriptor("madeira", ""), s, domain.AspectSquare)
	if a != b {
		t.Fatalf("FinalPrompt is not deterministic:\n%q\n%q", a, b)
	}
	if strings.Contains(a, "  ") {
		t.Fatalf("FinalPrompt contains uncollapsed whitespace: %q", a)
	}
}

func TestFinalPromptCatalogClauses(t *testing.T) {
	s := catalogSettings()
	got := FinalPrompt("PRODUCT: Tábua.", "", s, domain.AspectSquare)

	if !strings.Contains(got, "PRO CATALOG SHOT") {
		t.Errorf("catalog mandatory clause missing from %q", got)
	}
	if !strings.Contains(got, "ABSOLUTE reference") {
		t.Errorf("fidelity rules clause missing from %q", got)
	}
	if !strings.Contains(got, "DO NOT RENDER ANY TEXT") {
		t.Errorf("no-text enforcement clause missing from %q", got)
	}
	if strings.Contains(got, "OVERRIDE PERSONALIZATION") {
		t.Errorf("unexpected personalization override in %q", got)
	}
}

func TestFinalPromptPersonalizationOverride(t *testing.T) {
	s := catalogSettings()
	s.CustomPersonalization = "Trocar Edivaldo por Sergio"
	got := FinalPrompt("PRODUCT: Tábua.", "", s, domain.AspectSquare)

	if !strings.Contains(got, "Trocar Edivaldo por Sergio") {
		t.Errorf("personalization override missing from %q", got)
	}
	if strings.Contains(got, "DO NOT RENDER ANY TEXT") {
		t.Errorf("no-text enforcement must be omitted when personalization is set: %q", got)
	}
}

func TestFinalPromptSocialUsesSceneContext(t *testing.T) {
	s := domain.CreationSettings{
		Objective:           domain.ModeSocial,
		Background:          domain.BackgroundSceneContext,
		Shadow:              domain.ShadowMedium,
		Angle:               domain.AngleFront,
		AmbienceDescription: "Churrasco ao entardecer",
		PropsEnabled:        true,
		Props:               []string{"Sal grosso", "Ervas"},
	}
	got := FinalPrompt("PRODUCT: Tábua.", "", s, domain.AspectPortrait)

	if !strings.Contains(got, "High-end lifestyle") {
		t.Errorf("social mandatory clause missing from %q", got)
	}
	if !strings.Contains(got, "Churrasco ao entardecer") {
		t.Errorf("ambience description missing from %q", got)
	}
	if !strings.Contains(got, "Sal grosso, Ervas") {
		t.Errorf("props missing from %q", got)
	}
	if !strings.Contains(got, "(3:4)") {
		t.Errorf("aspect ratio text missing from %q", got)
	}
}

func TestFinalPromptDefaultsUnknownProfiles(t *testing.T) {
	s := catalogSettings()
	s.Angle = domain.CameraAngle("Diagonal")
	s.Shadow = domain.ShadowType("Dupla")
	got := FinalPrompt("PRODUCT: Caneca.", "", s, domain.AspectSquare)

	if !strings.Contains(got, "Three-quarter view") {
		t.Errorf("unknown angle should use the three-quarter profile: %q", got)
	}
	if !strings.Contains(got, "softbox overhead") {
		t.Errorf("unknown shadow should use the soft profile: %q", got)
	}
}

func TestNegativePrompt(t *testing.T) {
	got := NegativePrompt("fundo bagunçado")
	if !strings.HasPrefix(got, "text, typography") {
		t.Fatalf("negative suffix missing: %q", got)
	}
	if !strings.HasSuffix(got, ", fundo bagunçado") {
		t.Fatalf("user negative text missing: %q", got)
	}
	if NegativePrompt("  ") != negativeSuffix {
		t.Fatal("blank user negative should return the suffix alone")
	}
}

// Package assembler builds the final technical prompt strings sent to the
// image model. Everything here is pure and deterministic: the same inputs
// always produce byte-identical output.
package assembler

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

// MaterialDescriptor keyword-matches the combined material and product text
// against the material categories in priority order and returns the canned
// descriptor for the first matching category, or "" when none match.
func MaterialDescriptor(materialText, productName string) string {
	combined := strings.ToLower(materialText + " " + productName)
	for _, category := range materialCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(combined, keyword) {
				return category.descriptor
			}
		}
	}
	return ""
}

// FinalPrompt concatenates, in fixed order: subject+material, camera
// profile, lighting profile, background clause, quality clause, the
// personalization override (when present), fidelity rules, the mode
// mandatory clause, the aspect-ratio text, and the no-text enforcement
// clause (only when no personalization override exists). Whitespace is
// collapsed to single spaces.
func FinalPrompt(subject, materialDescriptor string, s domain.CreationSettings, aspect domain.AspectRatio) string {
	isCatalog := s.Objective == domain.ModeCatalog

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(subject))
	if materialDescriptor != "" {
		b.WriteString(" ")
		b.WriteString(materialDescriptor)
	}

	b.WriteString(" [TECHNICAL SETUP]: ")
	b.WriteString("- Mode: ")
	if isCatalog {
		b.WriteString(catalogMandatory)
	} else {
		b.WriteString(socialMandatory)
	}
	b.WriteString(" - Camera: ")
	b.WriteString(cameraProfile(s.Angle))
	b.WriteString(" - Lighting: ")
	b.WriteString(lightingProfile(s.Shadow))
	b.WriteString(" - Background: ")
	b.WriteString(backgroundClause(s, isCatalog))
	b.WriteString(" - ")
	b.WriteString(qualityClause)

	custom := strings.TrimSpace(s.CustomPersonalization)
	if custom != "" {
		fmt.Fprintf(&b, " [OVERRIDE PERSONALIZATION]: APPLY THE FOLLOWING CHANGE TO THE REFERENCE IMAGE: %s. Ensure text accuracy.", custom)
	}

	b.WriteString(" ")
	b.WriteString(fidelityRules)
	b.WriteString(" ")
	b.WriteString(aspectText(aspect))
	if custom == "" {
		b.WriteString(" ")
		b.WriteString(noTextEnforcement)
	}

	return collapseWhitespace(b.String())
}

// NegativePrompt prefixes the fixed negative suffix to the per-variant
// negative text.
func NegativePrompt(userNegative string) string {
	userNegative = strings.TrimSpace(userNegative)
	if userNegative == "" {
		return negativeSuffix
	}
	return negativeSuffix + ", " + userNegative
}

// Subject renders the subject block fed into FinalPrompt, combining the
// product identity with the translated EN creative prompt.
func Subject(productName, material, promptEn string) string {
	var parts []string
	if productName = strings.TrimSpace(productName); productName != "" {
		parts = append(parts, "PRODUCT: "+productName+".")
	}
	if material = strings.TrimSpace(material); material != "" {
		parts = append(parts, "MATERIAL: "+material+".")
	}
	if promptEn = strings.TrimSpace(promptEn); promptEn != "" {
		parts = append(parts, promptEn)
	}
	return strings.Join(parts, " ")
}

func cameraProfile(angle domain.CameraAngle) string {
	if p, ok := cameraProfiles[angle]; ok {
		return p
	}
	return cameraProfiles[domain.AngleThreeQuarters]
}

func lightingProfile(shadow domain.ShadowType) string {
	if p, ok := lightingProfiles[shadow]; ok {
		return p
	}
	return lightingProfiles[domain.ShadowSoft]
}

func backgroundClause(s domain.CreationSettings, isCatalog bool) string {
	if isCatalog {
		bg := strings.TrimSpace(s.CatalogBackground)
		if bg == "" {
			bg = "Pure white studio"
		}
		return "Solid catalog background: " + bg + "."
	}
	scene := strings.TrimSpace(s.AmbienceDescription)
	if scene == "" {
		scene = "Realistic context"
	}
	clause := "Scene context: " + scene + "."
	if s.PropsEnabled && len(s.Props) > 0 {
		clause += " Props: " + strings.Join(s.Props, ", ") + "."
	}
	return clause
}

func aspectText(aspect domain.AspectRatio) string {
	if t, ok := aspectRatioTexts[aspect]; ok {
		return t
	}
	return aspectRatioTexts[domain.AspectSquare]
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

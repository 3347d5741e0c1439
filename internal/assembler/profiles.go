package assembler

import "studio/internal/domain"

// Technical profile tables. These are the canonical lookup tables the final
// prompt is assembled from; unrecognized keys fall back to the three-quarter
// camera profile and the soft lighting profile.

var cameraProfiles = map[domain.CameraAngle]string{
	domain.AngleFront:         "Eye-level shot, 85mm lens, f/8 aperture, straight-on perspective, sharp focus on product details.",
	domain.AngleThreeQuarters: "Three-quarter view, 50mm lens, f/11 aperture, professional product placement, deep depth of field.",
	domain.AngleTop:           "Top-down overhead shot, 35mm flat lay lens, f/8, symmetrical composition, zero distortion.",
}

var lightingProfiles = map[domain.ShadowType]string{
	domain.ShadowContact: "Strong key light from 45 degrees, subtle fill light, sharp contact shadow, high contrast studio lighting.",
	domain.ShadowSoft:    "Large softbox overhead, wrap-around lighting, gentle rim light, ray-traced soft shadows, global illumination.",
	domain.ShadowMedium:  "Classic three-point lighting setup, softbox key, umbrella fill, hair light for rim definition, realistic specular highlights.",
	domain.ShadowStrong:  "Hard direct light source, high-contrast shadows, dramatic chiaroscuro effect, clean highlights.",
	domain.ShadowNone:    "Flat lighting, high-key studio environment, shadowless render, even illumination across all surfaces.",
}

// materialCategory pairs trigger keywords with the canned descriptor for one
// material family. Order in materialCategories is the priority order; the
// first category with a keyword hit wins.
type materialCategory struct {
	name       string
	keywords   []string
	descriptor string
}

var materialCategories = []materialCategory{
	{
		name:       "wood",
		keywords:   []string{"madeira", "wood", "teca", "carvalho"},
		descriptor: "Natural wood grain texture, realistic pores, satin finish, warm organic feel.",
	},
	{
		name:       "metal",
		keywords:   []string{"metal", "aço", "inox", "steel", "alumínio", "aluminum"},
		descriptor: "Brushed metal surface, anisotropic specular highlights, realistic reflections, cold industrial texture.",
	},
	{
		name:       "glass",
		keywords:   []string{"vidro", "glass", "cristal"},
		descriptor: "Physically accurate refraction, clear transparency, caustic light effects, realistic specular glints.",
	},
	{
		name:       "plastic",
		keywords:   []string{"plástico", "plastico", "plastic", "acrílico", "acrilico"},
		descriptor: "Subtle micro-scratches, realistic roughness map, matte finish, authentic material density.",
	},
	{
		name:       "leather",
		keywords:   []string{"couro", "leather"},
		descriptor: "Detailed hide texture, organic grain, soft specular sheen, realistic stitching details.",
	},
	{
		name:       "ceramic",
		keywords:   []string{"cerâmica", "ceramica", "porcelana", "ceramic", "porcelain"},
		descriptor: "Smooth glazed finish, soft clay reflections, clean porcelain texture, subsurface scattering.",
	},
}

var aspectRatioTexts = map[domain.AspectRatio]string{
	domain.AspectSquare:     "Square aspect ratio (1:1), centered composition.",
	domain.AspectPortrait:   "Vertical aspect ratio (3:4).",
	domain.AspectFeed:       "Vertical aspect ratio (4:5).",
	domain.AspectStory:      "Tall vertical aspect ratio (9:16).",
	domain.AspectWidescreen: "Widescreen aspect ratio (16:9).",
}

// Mandatory clause strings appended by the final prompt.
const (
	catalogMandatory = "PRO CATALOG SHOT. Clean solid background. Pure studio environment. Focus on geometry and texture. Professional commercial photography."
	socialMandatory  = "High-end lifestyle commercial marketing. Premium realistic environment. Cinematic lighting. Contextualized composition."

	negativeSuffix = "text, typography, letters, numbers, symbols, writing, watermark, logo, signature, blurry, distorted, low quality, warped, extra parts, unreadable, artistic blur, vignette, dark corners, altered product shape, changed logo, missing engraving, wrong proportions, morphing, words, alphabets, messy background, cluttered scene."

	fidelityRules = "CRITICAL: The attached HERO image is the ABSOLUTE reference. Maintain exact silhouette, proportions, and product identity. Do not change engravings or textures. Zero deformation."

	noTextEnforcement = "DO NOT RENDER ANY TEXT OR LOGOS OTHER THAN WHAT IS IN THE REFERENCE. Clean image only."

	promptHeader  = "PHOTOGRAPHIC STUDIO RENDER, 8K, HIGH FIDELITY."
	qualityClause = "Quality: Razor sharp, realistic textures, macro detail."
)

// Package material holds the surface parameters the renderer shades meshes with.
package material

import (
	"fmt"

	"github.com/Faultbox/globe/internal/assets"
)

// AlphaMode selects how alpha is treated when drawing.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaBlend
	AlphaToCoverage
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaOpaque:
		return "opaque"
	case AlphaBlend:
		return "blend"
	case AlphaToCoverage:
		return "alpha_to_coverage"
	default:
		return fmt.Sprintf("alpha(%d)", int(m))
	}
}

// ParseAlphaMode parses an alpha mode name.
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch s {
	case "", "opaque":
		return AlphaOpaque, nil
	case "blend":
		return AlphaBlend, nil
	case "alpha_to_coverage":
		return AlphaToCoverage, nil
	default:
		return 0, fmt.Errorf("unknown alpha mode %q", s)
	}
}

// Standard is a metallic-roughness material. Zero handles mean no texture.
type Standard struct {
	BaseColor        [4]float32
	BaseColorTexture assets.Handle

	Emissive        [3]float32
	EmissiveTexture assets.Handle

	NormalMapTexture         assets.Handle
	OcclusionTexture         assets.Handle
	MetallicRoughnessTexture assets.Handle

	PerceptualRoughness float32
	Metallic            float32
	Reflectance         float32

	AlphaMode   AlphaMode
	DoubleSided bool
	Unlit       bool
}

// Default returns the stock material: white, rough dielectric, opaque.
func Default() Standard {
	return Standard{
		BaseColor:           [4]float32{1, 1, 1, 1},
		PerceptualRoughness: 0.5,
		Reflectance:         0.5,
	}
}

// Color returns an unlit-friendly material of a single colour.
func Color(r, g, b float32) Standard {
	m := Default()
	m.BaseColor = [4]float32{r, g, b, 1}
	return m
}

// Roughness returns the squared perceptual roughness used by the BRDF.
func (m Standard) Roughness() float32 {
	r := m.PerceptualRoughness
	if r < 0.089 {
		r = 0.089
	}
	if r > 1 {
		r = 1
	}
	return r * r
}

// F0 returns the dielectric specular reflectance at normal incidence.
func (m Standard) F0() float32 {
	return 0.16 * m.Reflectance * m.Reflectance
}

// Transparent reports whether the material is drawn after opaque geometry.
func (m Standard) Transparent() bool {
	return m.AlphaMode == AlphaBlend
}

// Textures lists the texture handles the material samples, skipping unset ones.
func (m Standard) Textures() []assets.Handle {
	var out []assets.Handle
	for _, h := range []assets.Handle{
		m.BaseColorTexture,
		m.EmissiveTexture,
		m.NormalMapTexture,
		m.OcclusionTexture,
		m.MetallicRoughnessTexture,
	} {
		if h.IsValid() {
			out = append(out, h)
		}
	}
	return out
}

// Package lighting describes the lights of a scene in physical units.
package lighting

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/globe/internal/engine/transform"
	"github.com/Faultbox/globe/pkg/math"
)

// DefaultEV100 is the camera exposure the renderer assumes.
const DefaultEV100 = 9.7

// Exposure converts an EV100 value to the scale applied to physical light units.
func Exposure(ev100 float32) float32 {
	return 1 / (1.2 * math32.Pow(2, ev100))
}

// DirectionalLight is a sun-like light. Its transform only contributes rotation;
// light travels along the transform's forward direction.
type DirectionalLight struct {
	Color       [3]float32
	Illuminance float32 // lux
	Shadows     bool
	Transform   transform.Transform
}

// NewDirectionalLight creates a white light at position looking at target.
func NewDirectionalLight(illuminance float32, shadows bool, position, target, up math.Vec3) DirectionalLight {
	return DirectionalLight{
		Color:       [3]float32{1, 1, 1},
		Illuminance: illuminance,
		Shadows:     shadows,
		Transform:   transform.FromTranslation(position).LookingAt(target, up),
	}
}

// Direction returns the normalized direction toward the light.
func (l DirectionalLight) Direction() math.Vec3 {
	return l.Transform.Forward().Neg().Normalize()
}

// Radiance returns the light colour scaled to shader units under the given exposure.
func (l DirectionalLight) Radiance(exposure float32) [3]float32 {
	s := l.Illuminance * exposure
	return [3]float32{l.Color[0] * s, l.Color[1] * s, l.Color[2] * s}
}

// Ambient is a uniform light applied to every surface.
type Ambient struct {
	Color      [3]float32
	Brightness float32
}

// Radiance returns the ambient colour scaled to shader units under the given exposure.
func (a Ambient) Radiance(exposure float32) [3]float32 {
	s := a.Brightness * exposure
	return [3]float32{a.Color[0] * s, a.Color[1] * s, a.Color[2] * s}
}

// ClearColor is the colour the frame is cleared to before drawing.
type ClearColor [4]float32

// Black is an opaque black clear colour.
var Black = ClearColor{0, 0, 0, 1}

// ShadowFiltering selects how shadow maps are sampled.
type ShadowFiltering int

const (
	// FilterHardware2x2 uses a single hardware-filtered comparison.
	FilterHardware2x2 ShadowFiltering = iota
	// FilterGaussian blurs a 3x3 neighbourhood of comparisons.
	FilterGaussian
)

// ParseShadowFiltering parses a filtering name from configuration.
func ParseShadowFiltering(s string) (ShadowFiltering, error) {
	switch s {
	case "", "gaussian":
		return FilterGaussian, nil
	case "hardware2x2":
		return FilterHardware2x2, nil
	default:
		return 0, fmt.Errorf("unknown shadow filtering %q", s)
	}
}

package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globe/pkg/math"
)

func TestDirectionPointsAtLight(t *testing.T) {
	pos := math.Vec3{X: -4, Y: 4, Z: 4}
	l := NewDirectionalLight(10000, true, pos, math.Vec3{}, math.Vec3Y)

	want := pos.Normalize()
	got := l.Direction()
	assert.True(t, got.ApproxEqual(want, 1e-5), "got %v want %v", got, want)
	assert.True(t, l.Shadows)
}

func TestExposure(t *testing.T) {
	e := Exposure(DefaultEV100)
	assert.InDelta(t, 1.0/998.2, e, 1e-5)

	l := NewDirectionalLight(10000, false, math.Vec3{Y: 1}, math.Vec3{}, math.Vec3Z)
	r := l.Radiance(e)
	assert.InDelta(t, 10.02, r[0], 0.05)
}

func TestAmbientRadiance(t *testing.T) {
	a := Ambient{Color: [3]float32{1, 0.5, 0}, Brightness: 2}
	assert.Equal(t, [3]float32{1, 0.5, 0}, a.Radiance(0.5))
}

func TestParseShadowFiltering(t *testing.T) {
	f, err := ParseShadowFiltering("gaussian")
	require.NoError(t, err)
	assert.Equal(t, FilterGaussian, f)

	f, err = ParseShadowFiltering("hardware2x2")
	require.NoError(t, err)
	assert.Equal(t, FilterHardware2x2, f)

	_, err = ParseShadowFiltering("pcss")
	assert.Error(t, err)
}

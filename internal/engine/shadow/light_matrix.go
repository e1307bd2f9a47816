package shadow

import (
	"github.com/Faultbox/globe/pkg/math"
)

// Sphere bounds everything that casts or receives shadows.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// DirectionalLightMatrix computes the light view-projection for a shadow map.
// lightDir is the normalized direction toward the light.
func DirectionalLightMatrix(lightDir math.Vec3, bounds Sphere) math.Mat4 {
	radius := bounds.Radius
	if radius <= 0 {
		radius = 1
	}

	// Far enough back that nothing in bounds sits behind the near plane
	lightDistance := radius * 2
	lightPos := bounds.Center.Add(lightDir.Scale(lightDistance))

	up := math.Vec3Y
	if abs32(lightDir.Y) > 0.99 {
		up = math.Vec3Z
	}
	view := math.LookAt(lightPos, bounds.Center, up)

	padding := radius * 0.1
	halfSize := radius + padding
	near := float32(0.01)
	far := lightDistance + radius + padding

	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far)
	return proj.Mul(view)
}

// Bias maps clip space [-1, 1] to texture space [0, 1] for shadow lookups.
var Bias = math.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

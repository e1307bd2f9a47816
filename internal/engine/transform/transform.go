// Package transform provides the translation/rotation/scale triple carried by scene entities.
package transform

import (
	"github.com/Faultbox/globe/pkg/math"
)

// Transform places an entity in world space.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// Identity returns a transform at the origin with no rotation and unit scale.
func Identity() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One,
	}
}

// FromTranslation returns an identity transform moved to p.
func FromTranslation(p math.Vec3) Transform {
	t := Identity()
	t.Translation = p
	return t
}

// FromRotation returns an identity transform rotated by q.
func FromRotation(q math.Quat) Transform {
	t := Identity()
	t.Rotation = q
	return t
}

// FromXYZ returns an identity transform moved to (x, y, z).
func FromXYZ(x, y, z float32) Transform {
	return FromTranslation(math.Vec3{X: x, Y: y, Z: z})
}

// Rotate applies q on top of the current rotation, in world space.
func (t *Transform) Rotate(q math.Quat) {
	t.Rotation = q.Mul(t.Rotation).Normalize()
}

// LookingAt returns t rotated so that its forward (-Z) axis points at target.
// up is a hint; it is replaced when parallel to the view direction.
func (t Transform) LookingAt(target, up math.Vec3) Transform {
	back := t.Translation.Sub(target).Normalize()
	if back == (math.Vec3{}) {
		return t
	}
	right := up.Cross(back)
	if right.Length() < 1e-6 {
		right = math.Vec3Z.Cross(back)
		if right.Length() < 1e-6 {
			right = math.Vec3X
		}
	}
	right = right.Normalize()
	newUp := back.Cross(right)
	t.Rotation = math.QuatFromBasis(right, newUp, back)
	return t
}

// Forward returns the direction the transform faces (-Z rotated).
func (t Transform) Forward() math.Vec3 {
	return t.Rotation.Rotate(math.Vec3{Z: -1})
}

// Matrix returns the model matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.FromTRS(t.Translation, t.Rotation, t.Scale)
}

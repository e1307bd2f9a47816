package transform

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/globe/pkg/math"
)

func TestRotateIsWorldSpace(t *testing.T) {
	tr := FromRotation(math.QuatFromRotationZ(gomath.Pi))
	tr.Rotate(math.QuatFromRotationX(gomath.Pi / 2))

	want := math.QuatFromRotationX(gomath.Pi / 2).Mul(math.QuatFromRotationZ(gomath.Pi))
	assert.True(t, tr.Rotation.ApproxEqual(want, 1e-5), "got %v want %v", tr.Rotation, want)
}

func TestLookingAt(t *testing.T) {
	tr := FromXYZ(-4, 4, 4).LookingAt(math.Vec3{}, math.Vec3Y)

	want := math.Vec3{X: 4, Y: -4, Z: -4}.Normalize()
	assert.True(t, tr.Forward().ApproxEqual(want, 1e-5), "forward %v want %v", tr.Forward(), want)

	// Up stays in the plane of the hint
	up := tr.Rotation.Rotate(math.Vec3Y)
	assert.Greater(t, up.Y, float32(0))
}

func TestLookingAtParallelUp(t *testing.T) {
	tr := FromXYZ(0, 5, 0).LookingAt(math.Vec3{}, math.Vec3Y)
	assert.True(t, tr.Forward().ApproxEqual(math.Vec3{Y: -1}, 1e-5), "forward %v", tr.Forward())
}

func TestMatrix(t *testing.T) {
	tr := FromXYZ(1, 2, 3)
	tr.Scale = math.Vec3{X: 2, Y: 2, Z: 2}
	got := tr.Matrix().TransformVec3(math.Vec3{X: 1})
	assert.True(t, got.ApproxEqual(math.Vec3{X: 3, Y: 2, Z: 3}, 1e-5), "got %v", got)
}

package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func approxArr(a, b [3]float32, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity()[%d] = %f, want %f", i, m[i], want)
		}
	}
}

func TestFromTRS(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   [3]float32
		want [3]float32
	}{
		{"translation", FromTRS(Vec3{X: 10, Y: 20, Z: 30}, QuatIdentity(), Vec3One), [3]float32{1, 2, 3}, [3]float32{11, 22, 33}},
		{"scale", FromTRS(Vec3{}, QuatIdentity(), Vec3{X: 2, Y: 3, Z: 4}), [3]float32{1, 1, 1}, [3]float32{2, 3, 4}},
		{"rotate y 90", FromTRS(Vec3{}, QuatFromRotationY(math32.Pi/2), Vec3One), [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		// scale, then rotate, then translate
		{"order", FromTRS(Vec3{X: 5}, QuatFromRotationZ(math32.Pi/2), Vec3{X: 2, Y: 2, Z: 2}), [3]float32{1, 0, 0}, [3]float32{5, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !approxArr(got, tt.want, 1e-5) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMulAppliesRightFirst(t *testing.T) {
	translate := FromTRS(Vec3{X: 1}, QuatIdentity(), Vec3One)
	scale := FromTRS(Vec3{}, QuatIdentity(), Vec3{X: 3, Y: 3, Z: 3})

	got := translate.Mul(scale).TransformPoint([3]float32{1, 0, 0})
	if !approxArr(got, [3]float32{4, 0, 0}, 1e-6) {
		t.Errorf("translate*scale: got %v, want [4 0 0]", got)
	}
	got = scale.Mul(translate).TransformPoint([3]float32{1, 0, 0})
	if !approxArr(got, [3]float32{6, 0, 0}, 1e-6) {
		t.Errorf("scale*translate: got %v, want [6 0 0]", got)
	}
	if translate.Mul(Identity()) != translate {
		t.Error("M * I should equal M")
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math32.Pi/2, 1, 1, 100)
	near := m.TransformPoint([3]float32{0, 0, -1})
	far := m.TransformPoint([3]float32{0, 0, -100})
	if math32.Abs(near[2]+1) > 1e-5 {
		t.Errorf("near plane depth = %f, want -1", near[2])
	}
	if math32.Abs(far[2]-1) > 1e-4 {
		t.Errorf("far plane depth = %f, want 1", far[2])
	}
	edge := m.TransformPoint([3]float32{1, 0, -1})
	if math32.Abs(edge[0]-1) > 1e-5 {
		t.Errorf("90 degree fov edge x = %f, want 1", edge[0])
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(-2, 2, -1, 1, 0, 10)
	got := m.TransformPoint([3]float32{2, -1, -10})
	if !approxArr(got, [3]float32{1, -1, 1}, 1e-6) {
		t.Errorf("corner maps to %v, want [1 -1 1]", got)
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{X: -2, Y: 5, Z: 5}
	m := LookAt(eye, Vec3{}, Vec3Y)
	got := m.TransformPoint([3]float32{0, 0, 0})
	want := [3]float32{0, 0, -eye.Length()}
	if !approxArr(got, want, 1e-5) {
		t.Errorf("target in view space = %v, want %v", got, want)
	}
	if e := m.TransformPoint(eye.Array()); !approxArr(e, [3]float32{}, 1e-5) {
		t.Errorf("eye in view space = %v, want origin", e)
	}
}

func TestWithoutTranslation(t *testing.T) {
	m := FromTRS(Vec3{X: 5, Y: 6, Z: 7}, QuatFromRotationX(0.3), Vec3One)
	got := m.WithoutTranslation()
	if got[12] != 0 || got[13] != 0 || got[14] != 0 {
		t.Errorf("translation not cleared: %v", got[12:15])
	}
	if got[5] != m[5] {
		t.Error("rotation should be kept")
	}
}

func TestNormalMatrix(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"rotation", FromTRS(Vec3{X: 3}, QuatFromRotationY(0.7), Vec3One)},
		{"non-uniform scale", FromTRS(Vec3{}, QuatFromRotationZ(0.4), Vec3{X: 2, Y: 0.5, Z: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := tt.m.NormalMatrix().WithoutTranslation()
			// A tangent of the surface and the transformed normal stay perpendicular.
			normal := Vec3{X: 1, Y: 1}.Normalize()
			tangent := Vec3{X: 1, Y: -1}.Normalize()
			n := nm.TransformVec3(normal)
			tg := tt.m.WithoutTranslation().TransformVec3(tangent)
			if d := n.Dot(tg); math32.Abs(d) > 1e-5 {
				t.Errorf("normal . tangent = %f, want 0", d)
			}
		})
	}
	var singular Mat4
	if singular.NormalMatrix() != Identity() {
		t.Error("singular matrix should give identity")
	}
}

package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
)

// GenerateTangents accumulates per-triangle tangents from UV gradients and
// orthonormalises them against the vertex normals.
func (m *Mesh) GenerateTangents() error {
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("generate tangents: need a triangle list, got %d indices", len(m.Indices))
	}

	tan := make([][3]float32, len(m.Vertices))
	bitan := make([][3]float32, len(m.Vertices))

	for t := 0; t < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
			return fmt.Errorf("generate tangents: index out of range in triangle %d", t/3)
		}
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		e1 := sub3(v1.Position, v0.Position)
		e2 := sub3(v2.Position, v0.Position)
		du1, dv1 := v1.TexCoord[0]-v0.TexCoord[0], v1.TexCoord[1]-v0.TexCoord[1]
		du2, dv2 := v2.TexCoord[0]-v0.TexCoord[0], v2.TexCoord[1]-v0.TexCoord[1]

		det := du1*dv2 - du2*dv1
		if math32.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		sdir := [3]float32{
			(dv2*e1[0] - dv1*e2[0]) * r,
			(dv2*e1[1] - dv1*e2[1]) * r,
			(dv2*e1[2] - dv1*e2[2]) * r,
		}
		tdir := [3]float32{
			(du1*e2[0] - du2*e1[0]) * r,
			(du1*e2[1] - du2*e1[1]) * r,
			(du1*e2[2] - du2*e1[2]) * r,
		}
		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = add3(tan[i], sdir)
			bitan[i] = add3(bitan[i], tdir)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan[i]
		// Gram-Schmidt
		t = normalize(sub3(t, scale3(n, dot3(n, t))))
		if dot3(t, t) < 0.5 {
			t = fallbackTangent(n)
		}
		w := float32(1)
		if dot3(cross3(n, t), bitan[i]) < 0 {
			w = -1
		}
		m.Vertices[i].Tangent = [4]float32{t[0], t[1], t[2], w}
	}
	m.HasTangents = true
	return nil
}

// fallbackTangent picks any unit vector perpendicular to n, for vertices whose
// triangles all have degenerate UVs (sphere poles).
func fallbackTangent(n [3]float32) [3]float32 {
	axis := [3]float32{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = [3]float32{0, 1, 0}
	}
	return normalize(cross3(n, axis))
}

func add3(a, b [3]float32) [3]float32 { return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub3(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale3(a [3]float32, s float32) [3]float32 {
	return [3]float32{a[0] * s, a[1] * s, a[2] * s}
}
func dot3(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

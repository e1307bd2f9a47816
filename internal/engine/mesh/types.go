// Package mesh builds the procedural meshes the globe scene draws.
package mesh

// Vertex is the interleaved vertex layout uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Tangent  [4]float32 // xyz tangent, w handedness
}

// Mesh holds indexed triangle data ready for upload.
type Mesh struct {
	Vertices    []Vertex
	Indices     []uint32
	Bounds      Bounds
	HasTangents bool
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func (m *Mesh) computeBounds() {
	m.Bounds = emptyBounds()
	for _, v := range m.Vertices {
		updateBounds(&m.Bounds, v.Position)
	}
}

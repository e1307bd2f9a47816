package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Capsule builds a capsule along the Y axis: a cylinder of the given length capped
// by two hemispheres. latitudes must be even and counts rows pole to pole.
func Capsule(radius, length float32, latitudes, longitudes int) (*Mesh, error) {
	if latitudes < 2 || latitudes%2 != 0 {
		return nil, fmt.Errorf("capsule latitudes must be even and at least 2, got %d", latitudes)
	}
	if longitudes < 3 {
		return nil, fmt.Errorf("capsule needs at least 3 longitudes, got %d", longitudes)
	}

	half := latitudes / 2
	halfLength := length / 2
	rows := latitudes + 2 // equator row is emitted once per hemisphere
	cols := longitudes + 1

	m := &Mesh{Vertices: make([]Vertex, 0, rows*cols)}
	for r := 0; r < rows; r++ {
		var phi, offset float32
		if r <= half {
			phi = math32.Pi / 2 * float32(r) / float32(half)
			offset = halfLength
		} else {
			phi = math32.Pi / 2 * float32(r-1) / float32(half)
			offset = -halfLength
		}
		sinPhi, cosPhi := math32.Sincos(phi)
		v := float32(r) / float32(rows-1)
		for c := 0; c < cols; c++ {
			sinTheta, cosTheta := math32.Sincos(2 * math32.Pi * float32(c) / float32(longitudes))
			n := [3]float32{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{n[0] * radius, n[1]*radius + offset, n[2] * radius},
				Normal:   n,
				TexCoord: [2]float32{float32(c) / float32(longitudes), v},
			})
		}
	}

	last := rows - 2
	for r := 0; r <= last; r++ {
		k1 := uint32(r * cols)
		k2 := k1 + uint32(cols)
		for c := 0; c < longitudes; c++ {
			if r != 0 {
				m.Indices = append(m.Indices, k1, k1+1, k2)
			}
			if r != last {
				m.Indices = append(m.Indices, k1+1, k2+1, k2)
			}
			k1++
			k2++
		}
	}

	m.computeBounds()
	return m, nil
}

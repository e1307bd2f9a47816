package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
)

// UVSphere builds a latitude/longitude sphere with its poles on the Z axis.
// U runs with longitude, V from the +Z pole (0) to the -Z pole (1).
func UVSphere(radius float32, sectors, stacks int) (*Mesh, error) {
	if sectors < 3 || stacks < 2 {
		return nil, fmt.Errorf("uv sphere needs at least 3 sectors and 2 stacks, got %dx%d", sectors, stacks)
	}

	sectorStep := 2 * math32.Pi / float32(sectors)
	stackStep := math32.Pi / float32(stacks)

	m := &Mesh{Vertices: make([]Vertex, 0, (sectors+1)*(stacks+1))}
	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*stackStep
		sinStack, cosStack := math32.Sincos(stackAngle)
		for j := 0; j <= sectors; j++ {
			sinSector, cosSector := math32.Sincos(float32(j) * sectorStep)
			n := [3]float32{cosStack * cosSector, cosStack * sinSector, sinStack}
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				TexCoord: [2]float32{float32(j) / float32(sectors), float32(i) / float32(stacks)},
			})
		}
	}

	// Pole rows collapse to a point, so only one triangle per quad there.
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors+1)
		for j := 0; j < sectors; j++ {
			if i != 0 {
				m.Indices = append(m.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				m.Indices = append(m.Indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}

	m.computeBounds()
	return m, nil
}

// MaxIcosphereSubdivisions is the first subdivision count Icosphere rejects.
const MaxIcosphereSubdivisions = 80

// IcosphereError reports a subdivision count that would produce too many vertices.
type IcosphereError struct {
	Subdivisions int
	Points       int
}

func (e *IcosphereError) Error() string {
	return fmt.Sprintf("cannot create an icosphere of %d subdivisions: %d vertices", e.Subdivisions, e.Points)
}

// IcospherePoints is the vertex count of an icosphere with the given subdivisions.
func IcospherePoints(subdivisions int) int {
	n := subdivisions + 1
	return n*n*10 + 2
}

var icoVertices = func() [12][3]float32 {
	t := (1 + math32.Sqrt(5)) / 2
	raw := [12][3]float32{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range raw {
		raw[i] = normalize(raw[i])
	}
	return raw
}()

var icoFaces = [20][3]uint32{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

type edgeKey struct {
	a, b uint32
	step int
}

// Icosphere builds a geodesic sphere by splitting every icosahedron edge into
// subdivisions+1 segments and projecting the points onto the sphere.
func Icosphere(radius float32, subdivisions int) (*Mesh, error) {
	if subdivisions < 0 {
		return nil, fmt.Errorf("icosphere subdivisions must be non-negative, got %d", subdivisions)
	}
	if subdivisions >= MaxIcosphereSubdivisions {
		return nil, &IcosphereError{Subdivisions: subdivisions, Points: IcospherePoints(subdivisions)}
	}

	n := subdivisions + 1
	var unit [][3]float32
	unit = append(unit, icoVertices[:]...)
	edges := make(map[edgeKey]uint32)

	edgePoint := func(u, v uint32, step int) uint32 {
		if u > v {
			u, v, step = v, u, n-step
		}
		key := edgeKey{u, v, step}
		if id, ok := edges[key]; ok {
			return id
		}
		p := lerp3(icoVertices[u], icoVertices[v], float32(step)/float32(n))
		unit = append(unit, normalize(p))
		id := uint32(len(unit) - 1)
		edges[key] = id
		return id
	}

	var indices []uint32
	grid := make([][]uint32, n+1)
	for _, f := range icoFaces {
		a, b, c := f[0], f[1], f[2]
		// i walks toward b, j toward c.
		for i := 0; i <= n; i++ {
			grid[i] = grid[i][:0]
			for j := 0; j <= n-i; j++ {
				var id uint32
				switch {
				case i == 0 && j == 0:
					id = a
				case i == n:
					id = b
				case j == n:
					id = c
				case j == 0:
					id = edgePoint(a, b, i)
				case i == 0:
					id = edgePoint(a, c, j)
				case i+j == n:
					id = edgePoint(b, c, j)
				default:
					k := n - i - j
					var p [3]float32
					for x := 0; x < 3; x++ {
						p[x] = (icoVertices[a][x]*float32(k) + icoVertices[b][x]*float32(i) + icoVertices[c][x]*float32(j)) / float32(n)
					}
					unit = append(unit, normalize(p))
					id = uint32(len(unit) - 1)
				}
				grid[i] = append(grid[i], id)
			}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n-i; j++ {
				indices = append(indices, grid[i][j], grid[i+1][j], grid[i][j+1])
				if j+1 < n-i {
					indices = append(indices, grid[i+1][j], grid[i+1][j+1], grid[i][j+1])
				}
			}
		}
	}

	m := &Mesh{Vertices: make([]Vertex, len(unit)), Indices: indices}
	for i, p := range unit {
		u := 0.5 + math32.Atan2(p[1], p[0])/(2*math32.Pi)
		v := math32.Acos(clamp(p[2], -1, 1)) / math32.Pi
		m.Vertices[i] = Vertex{
			Position: [3]float32{p[0] * radius, p[1] * radius, p[2] * radius},
			Normal:   p,
			TexCoord: [2]float32{u, v},
		}
	}
	m.computeBounds()
	return m, nil
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 1e-12 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

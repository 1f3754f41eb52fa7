// Package mesh is a small editable indexed triangle mesh. It owns vertex
// positions and face topology; the octree only references its faces.
package mesh

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree/prim"
)

var ErrVertexIndex = errors.New("vertex index out of range")

type Face struct {
	ID       uuid.UUID
	Vertices [3]int
}

type Mesh struct {
	vertices    []r3.Vec
	faces       []Face
	vertexFaces [][]int
}

func New() *Mesh {
	return &Mesh{}
}

func (m *Mesh) AddVertex(v r3.Vec) int {
	m.vertices = append(m.vertices, v)
	m.vertexFaces = append(m.vertexFaces, nil)
	return len(m.vertices) - 1
}

// AddFace adds a triangle over three existing vertices and returns its index.
func (m *Mesh) AddFace(a, b, c int) (int, error) {
	for _, v := range [3]int{a, b, c} {
		if v < 0 || v >= len(m.vertices) {
			return -1, errors.Wrapf(ErrVertexIndex, "vertex %d of %d", v, len(m.vertices))
		}
	}

	index := len(m.faces)
	m.faces = append(m.faces, Face{
		ID:       uuid.New(),
		Vertices: [3]int{a, b, c},
	})
	for _, v := range [3]int{a, b, c} {
		m.vertexFaces[v] = append(m.vertexFaces[v], index)
	}
	return index, nil
}

// mustAddFace is AddFace for generators whose indices are valid by
// construction.
func (m *Mesh) mustAddFace(a, b, c int) int {
	i, err := m.AddFace(a, b, c)
	if err != nil {
		panic(err)
	}
	return i
}

func (m *Mesh) NumVertices() int { return len(m.vertices) }
func (m *Mesh) NumFaces() int    { return len(m.faces) }

func (m *Mesh) Vertex(i int) r3.Vec { return m.vertices[i] }
func (m *Mesh) Face(i int) Face     { return m.faces[i] }

// FaceTriangle recomputes the face's triangle from current vertex positions.
func (m *Mesh) FaceTriangle(i int) prim.Triangle {
	f := m.faces[i]
	return prim.NewTriangle(m.vertices[f.Vertices[0]], m.vertices[f.Vertices[1]], m.vertices[f.Vertices[2]])
}

// MoveVertex sets a vertex position and returns the indices of the faces
// around it, which need realigning in any spatial index.
func (m *Mesh) MoveVertex(i int, pos r3.Vec) []int {
	m.vertices[i] = pos
	return m.vertexFaces[i]
}

// VertexNormal averages the normals of the faces around a vertex.
func (m *Mesh) VertexNormal(i int) r3.Vec {
	var n r3.Vec
	for _, f := range m.vertexFaces[i] {
		n = r3.Add(n, m.FaceTriangle(f).Normal())
	}
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Grid builds an n×n quad grid of the given size in the z=0 plane, centered on
// the origin, split into 2·n² triangles.
func Grid(n int, size float64) *Mesh {
	m := New()
	step := size / float64(n)
	half := size * 0.5

	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.AddVertex(r3.Vec{X: float64(x)*step - half, Y: float64(y)*step - half})
		}
	}

	at := func(x, y int) int { return y*(n+1) + x }
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.mustAddFace(at(x, y), at(x+1, y), at(x+1, y+1))
			m.mustAddFace(at(x, y), at(x+1, y+1), at(x, y+1))
		}
	}
	return m
}

// UVSphere builds a closed sphere from rings × segments quads, with triangle
// fans at the poles.
func UVSphere(center r3.Vec, radius float64, rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}
	m := New()

	top := m.AddVertex(r3.Add(center, r3.Vec{Z: radius}))
	for r := 1; r < rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			m.AddVertex(r3.Add(center, r3.Vec{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			}))
		}
	}
	bottom := m.AddVertex(r3.Add(center, r3.Vec{Z: -radius}))

	ring := func(r, s int) int { return 1 + (r-1)*segments + s%segments }
	for s := 0; s < segments; s++ {
		m.mustAddFace(top, ring(1, s), ring(1, s+1))
	}
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			m.mustAddFace(ring(r, s), ring(r+1, s), ring(r+1, s+1))
			m.mustAddFace(ring(r, s), ring(r+1, s+1), ring(r, s+1))
		}
	}
	for s := 0; s < segments; s++ {
		m.mustAddFace(bottom, ring(rings-1, s+1), ring(rings-1, s))
	}
	return m
}

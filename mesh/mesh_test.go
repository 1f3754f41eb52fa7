package mesh

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAddFace(t *testing.T) {
	m := New()
	a := m.AddVertex(r3.Vec{})
	b := m.AddVertex(r3.Vec{X: 1})
	c := m.AddVertex(r3.Vec{Y: 1})

	i, err := m.AddFace(a, b, c)
	require.NoError(t, err)
	require.Equal(t, 0, i)
	require.NotEqual(t, uuid.Nil, m.Face(i).ID)

	_, err = m.AddFace(a, b, 7)
	require.True(t, errors.Is(err, ErrVertexIndex))
	require.Equal(t, 1, m.NumFaces())
}

func TestMoveVertex(t *testing.T) {
	m := Grid(2, 2)
	require.Equal(t, 9, m.NumVertices())
	require.Equal(t, 8, m.NumFaces())

	// center vertex of a 2x2 grid touches six triangles
	faces := m.MoveVertex(4, r3.Vec{Z: 1})
	require.Len(t, faces, 6)
	for _, f := range faces {
		tri := m.FaceTriangle(f)
		require.Contains(t, tri[:], r3.Vec{Z: 1})
	}
	require.Equal(t, r3.Vec{Z: 1}, m.Vertex(4))
}

func TestGridNormals(t *testing.T) {
	m := Grid(3, 3)
	for i := 0; i < m.NumFaces(); i++ {
		require.InDelta(t, 1, m.FaceTriangle(i).Normal().Z, 1e-12)
	}
	require.InDelta(t, 1, m.VertexNormal(5).Z, 1e-12)
}

func TestUVSphere(t *testing.T) {
	const rings, segments = 6, 8
	m := UVSphere(r3.Vec{}, 2, rings, segments)

	require.Equal(t, 2+(rings-1)*segments, m.NumVertices())
	require.Equal(t, 2*segments+2*(rings-2)*segments, m.NumFaces())

	for i := 0; i < m.NumVertices(); i++ {
		require.InDelta(t, 2, r3.Norm(m.Vertex(i)), 1e-9)
	}
	// outward winding
	for i := 0; i < m.NumFaces(); i++ {
		tri := m.FaceTriangle(i)
		require.Greater(t, r3.Dot(tri.Normal(), tri.Center()), 0.0, "face %d", i)
	}
}

func TestGeneratorsPanicOnBadIndex(t *testing.T) {
	m := New()
	m.AddVertex(r3.Vec{})
	require.Panics(t, func() { m.mustAddFace(0, 0, 1) })
	require.Zero(t, m.NumFaces())

	require.NotPanics(t, func() { Grid(3, 1) })
	require.NotPanics(t, func() { UVSphere(r3.Vec{}, 1, 2, 3) })
}

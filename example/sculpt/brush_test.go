package main

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree"
	"github.com/ImVexed/dynoctree/debugdraw"
	"github.com/ImVexed/dynoctree/mesh"
	"github.com/ImVexed/dynoctree/prim"
)

func newTestSculptor(t *testing.T, strength float64) *Sculptor {
	s, err := NewSculptor(mesh.UVSphere(r3.Vec{}, 10, 16, 32), dynoctree.Config{SavePrimitives: true}, Brush{
		Radius:   3,
		Strength: strength,
	})
	require.NoError(t, err)
	return s
}

func TestStrokeMiss(t *testing.T) {
	s := newTestSculptor(t, 1)

	res, err := s.Stroke(prim.NewRay(r3.Vec{X: 40, Y: 40}, r3.Vec{X: 1}))
	require.NoError(t, err)
	require.False(t, res.Hit)
	require.Zero(t, res.Vertices)
}

func TestStrokeRaises(t *testing.T) {
	s := newTestSculptor(t, 2)
	ray := prim.NewRay(r3.Vec{X: 40, Y: 0.2, Z: 0.3}, r3.Vec{X: -1})

	res, err := s.Stroke(ray)
	require.NoError(t, err)
	require.True(t, res.Hit)
	require.InDelta(t, 10, res.Position.X, 0.5)
	require.NotZero(t, res.Vertices)
	require.NotZero(t, res.Moved+res.Stayed)

	var hit dynoctree.FaceIntersection
	require.NoError(t, s.Locked(func(m *mesh.Mesh, tree *dynoctree.Tree) error {
		require.Equal(t, m.NumFaces(), tree.NumFaces())
		require.True(t, tree.IntersectRay(m, ray, &hit))

		var cached dynoctree.Intersection
		require.True(t, tree.IntersectRayPrimitives(ray, &cached))
		require.InDelta(t, hit.Distance, cached.Distance, 1e-9)
		return nil
	}))
	require.Greater(t, hit.Position.X, res.Position.X)
}

func TestManyStrokes(t *testing.T) {
	s := newTestSculptor(t, -0.5)
	rnd := rand.New(rand.NewSource(7))

	hits := 0
	for n := 0; n < 50; n++ {
		res, err := s.Stroke(randomRay(rnd, 40))
		require.NoError(t, err)
		if res.Hit {
			hits++
		}
	}
	// rays aimed at the center of a closed mesh hit it
	require.Greater(t, hits, 45)

	stats := s.Statistics()
	require.Equal(t, s.mesh.NumFaces(), stats.NumFaces)

	var buf bytes.Buffer
	require.NoError(t, s.Locked(func(m *mesh.Mesh, tree *dynoctree.Tree) error {
		return debugdraw.Encode(&buf, tree, m, debugdraw.Options{Scale: 4})
	}))
	require.NotZero(t, buf.Len())
}

func TestStrokeForgetsPreviousHit(t *testing.T) {
	s := newTestSculptor(t, 0.5)

	first, err := s.Stroke(prim.NewRay(r3.Vec{X: 40, Y: 0.2, Z: 0.3}, r3.Vec{X: -1}))
	require.NoError(t, err)
	require.True(t, first.Hit)
	require.Greater(t, first.Position.X, 0.0)

	// farther away than the first hit, so a stale hit would be kept
	second, err := s.Stroke(prim.NewRay(r3.Vec{X: -60, Y: 0.2, Z: 0.3}, r3.Vec{X: 1}))
	require.NoError(t, err)
	require.True(t, second.Hit)
	require.Less(t, second.Position.X, 0.0)
}

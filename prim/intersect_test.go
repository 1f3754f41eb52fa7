package prim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitTriangle = NewTriangle(
	r3.Vec{X: -0.5, Y: -0.5},
	r3.Vec{X: 0.5, Y: -0.5},
	r3.Vec{Y: 0.5},
)

func TestTriangleMeasures(t *testing.T) {
	require.InDelta(t, 1.0, unitTriangle.OneDimExtent(), 1e-12)
	require.Equal(t, r3.Vec{}, unitTriangle.Center())
	require.Equal(t, r3.Vec{Z: 1}, unitTriangle.Normal())

	var degenerate Triangle
	require.Equal(t, r3.Vec{}, degenerate.Normal())
	require.Zero(t, degenerate.OneDimExtent())
}

func TestRayTriangle(t *testing.T) {
	p, ok := RayTriangle(NewRay(r3.Vec{Z: 5}, r3.Vec{Z: -1}), unitTriangle)
	require.True(t, ok)
	require.InDelta(t, 0, r3.Norm(p), 1e-9)

	// back face
	_, ok = RayTriangle(NewRay(r3.Vec{Z: -5}, r3.Vec{Z: 1}), unitTriangle)
	require.True(t, ok)

	// pointing away
	_, ok = RayTriangle(NewRay(r3.Vec{X: 10, Y: 10, Z: 10}, r3.Vec{X: 1, Y: 1, Z: 1}), unitTriangle)
	require.False(t, ok)

	// parallel
	_, ok = RayTriangle(NewRay(r3.Vec{Z: 1}, r3.Vec{X: 1}), unitTriangle)
	require.False(t, ok)
}

func TestRayBox(t *testing.T) {
	box := NewAABox(r3.Vec{}, 2)

	require.True(t, RayBox(NewRay(r3.Vec{Z: 5}, r3.Vec{Z: -1}), box))
	require.True(t, RayBox(NewRay(r3.Vec{}, r3.Vec{X: 1}), box), "origin inside")
	require.False(t, RayBox(NewRay(r3.Vec{Z: 5}, r3.Vec{Z: 1}), box), "box behind")
	require.False(t, RayBox(NewRay(r3.Vec{X: 5, Z: 5}, r3.Vec{Z: -1}), box), "parallel outside slab")
}

func TestSphereTests(t *testing.T) {
	box := NewAABox(r3.Vec{}, 2)
	require.True(t, SphereBox(Sphere{Center: r3.Vec{X: 1.5}, Radius: 0.6}, box))
	require.False(t, SphereBox(Sphere{Center: r3.Vec{X: 2, Y: 2, Z: 2}, Radius: 1}, box))

	require.True(t, SphereTriangle(Sphere{Center: r3.Vec{Z: 0.5}, Radius: 0.6}, unitTriangle))
	require.False(t, SphereTriangle(Sphere{Center: r3.Vec{Z: 0.5}, Radius: 0.4}, unitTriangle))
	require.True(t, SphereTriangle(Sphere{Center: r3.Vec{X: 1, Y: -0.5}, Radius: 0.5}, unitTriangle))
}

func TestClosestOnTriangle(t *testing.T) {
	cases := []struct {
		p, want r3.Vec
	}{
		{r3.Vec{X: -2, Y: -2}, unitTriangle[0]},
		{r3.Vec{X: 2, Y: -2}, unitTriangle[1]},
		{r3.Vec{Y: 3}, unitTriangle[2]},
		{r3.Vec{Y: -3}, r3.Vec{Y: -0.5}},
		{r3.Vec{Z: 4}, r3.Vec{}},
	}
	for _, c := range cases {
		got := ClosestOnTriangle(c.p, unitTriangle)
		require.InDelta(t, 0, r3.Norm(r3.Sub(got, c.want)), 1e-9, "p=%v", c.p)
	}
}

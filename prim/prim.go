// Package prim holds the geometric primitives the octree tests faces against.
package prim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Triangle [3]r3.Vec

func NewTriangle(a, b, c r3.Vec) Triangle {
	return Triangle{a, b, c}
}

// Center is the center of the triangle's bounding box. A triangle whose
// Center lies in a cube of width w and whose OneDimExtent is at most w never
// reaches outside the concentric cube of width 2w.
func (t Triangle) Center() r3.Vec {
	return t.Bounds().Center()
}

func (t Triangle) Bounds() AABox {
	return AABox{
		Min: minElem(minElem(t[0], t[1]), t[2]),
		Max: maxElem(maxElem(t[0], t[1]), t[2]),
	}
}

// OneDimExtent is the longest side of the triangle's bounding box.
func (t Triangle) OneDimExtent() float64 {
	return maxComponent(t.Bounds().Size())
}

func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Ray is a half line. Direction is normalized by NewRay.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

func NewRay(origin, direction r3.Vec) Ray {
	return Ray{Origin: origin, Direction: r3.Unit(direction)}
}

func (r Ray) PointAt(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

type Sphere struct {
	Center r3.Vec
	Radius float64
}

type AABox struct {
	Min, Max r3.Vec
}

// NewAABox returns a cube centered on center with the given edge length.
func NewAABox(center r3.Vec, width float64) AABox {
	half := r3.Vec{X: width * 0.5, Y: width * 0.5, Z: width * 0.5}
	return AABox{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

func (b AABox) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

func (b AABox) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Contains treats the bounds as inside.
func (b AABox) Contains(v r3.Vec) bool {
	return b.Min.X <= v.X && v.X <= b.Max.X &&
		b.Min.Y <= v.Y && v.Y <= b.Max.Y &&
		b.Min.Z <= v.Z && v.Z <= b.Max.Z
}

func (b AABox) Closest(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

func minElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func maxComponent(a r3.Vec) float64 {
	return math.Max(a.Z, math.Max(a.X, a.Y))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

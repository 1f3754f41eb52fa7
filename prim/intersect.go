package prim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

// RayBox reports whether the ray hits the box (slab method). A ray starting
// inside the box always hits.
func RayBox(r Ray, b AABox) bool {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < epsilon {
			// parallel to the slab
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return false
			}
			continue
		}
		t1 := (lo[axis] - o[axis]) / d[axis]
		t2 := (hi[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}

	// if tmax < 0 the whole box is behind the origin
	return tmax >= 0
}

// RayTriangle is Möller–Trumbore. Both sides of the triangle are hit. On a hit
// it returns the intersection point.
func RayTriangle(r Ray, tri Triangle) (r3.Vec, bool) {
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	pvec := r3.Cross(r.Direction, e2)
	det := r3.Dot(e1, pvec)
	if math.Abs(det) < epsilon {
		return r3.Vec{}, false
	}
	inv := 1.0 / det

	tvec := r3.Sub(r.Origin, tri[0])
	u := r3.Dot(tvec, pvec) * inv
	if u < 0 || u > 1 {
		return r3.Vec{}, false
	}
	qvec := r3.Cross(tvec, e1)
	v := r3.Dot(r.Direction, qvec) * inv
	if v < 0 || u+v > 1 {
		return r3.Vec{}, false
	}
	t := r3.Dot(e2, qvec) * inv
	if t <= epsilon {
		return r3.Vec{}, false
	}
	return r.PointAt(t), true
}

func SphereBox(s Sphere, b AABox) bool {
	return r3.Norm2(r3.Sub(b.Closest(s.Center), s.Center)) <= s.Radius*s.Radius
}

func SphereTriangle(s Sphere, tri Triangle) bool {
	return r3.Norm2(r3.Sub(ClosestOnTriangle(s.Center, tri), s.Center)) <= s.Radius*s.Radius
}

// ClosestOnTriangle returns the point of tri closest to p, following the
// Voronoi region walk from Ericson's Real-Time Collision Detection.
func ClosestOnTriangle(p r3.Vec, tri Triangle) r3.Vec {
	a, b, c := tri[0], tri[1], tri[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)

	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-d3), ab))
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return r3.Add(b, r3.Scale((d4-d3)/((d4-d3)+(d5-d6)), r3.Sub(c, b)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

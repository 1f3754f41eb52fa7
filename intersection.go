package dynoctree

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree/prim"
)

// HitTest decides whether a node's loose box is worth descending into.
type HitTest func(box prim.AABox) bool

// Intersection accumulates the closest hit along a ray.
type Intersection struct {
	isIntersection bool

	Distance float64
	Position r3.Vec
	Normal   r3.Vec
}

func (i *Intersection) IsIntersection() bool { return i.isIntersection }

// Update records the hit if it is strictly closer than the current one.
func (i *Intersection) Update(distance float64, position, normal r3.Vec) bool {
	if i.isIntersection && distance >= i.Distance {
		return false
	}
	i.isIntersection = true
	i.Distance = distance
	i.Position = position
	i.Normal = normal
	return true
}

func (i *Intersection) Reset() { *i = Intersection{} }

// FaceIntersection also remembers which face was hit.
type FaceIntersection struct {
	Intersection

	Mesh Mesh
	Face *Face
}

func (i *FaceIntersection) UpdateFace(distance float64, position, normal r3.Vec, m Mesh, f *Face) bool {
	if !i.Update(distance, position, normal) {
		return false
	}
	i.Mesh = m
	i.Face = f
	return true
}

func (i *FaceIntersection) Reset() { *i = FaceIntersection{} }

// rayTester tests the candidates a node offers against a ray.
type rayTester interface {
	testNode(n *node, ray prim.Ray)
}

type meshRayTester struct {
	mesh Mesh
	hit  *FaceIntersection
}

func (m meshRayTester) testNode(n *node, ray prim.Ray) {
	for _, f := range n.faces {
		tri := m.mesh.FaceTriangle(f.index)
		if p, ok := prim.RayTriangle(ray, tri); ok {
			m.hit.UpdateFace(r3.Norm(r3.Sub(p, ray.Origin)), p, tri.Normal(), m.mesh, f)
		}
	}
}

type primitiveRayTester struct {
	hit *Intersection
}

func (p primitiveRayTester) testNode(n *node, ray prim.Ray) {
	for _, tri := range n.primitives {
		if pos, ok := prim.RayTriangle(ray, tri); ok {
			p.hit.Update(r3.Norm(r3.Sub(pos, ray.Origin)), pos, tri.Normal())
		}
	}
}

func (t *Tree) traverse(test HitTest, visit func(h nodeHandle, n *node) bool) {
	if !t.HasRoot() {
		return
	}

	var buf [64]nodeHandle
	stack := append(buf[:0], t.root)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.node(h)
		if test != nil && !test(n.looseBox()) {
			continue
		}
		if !visit(h, n) || !n.hasChildren {
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}

func (t *Tree) castRay(ray prim.Ray, tester rayTester) {
	t.traverse(func(box prim.AABox) bool {
		return prim.RayBox(ray, box)
	}, func(_ nodeHandle, n *node) bool {
		tester.testNode(n, ray)
		return true
	})
}

// Traverse returns the faces of every node whose loose box passes test. It is
// a broad phase: the faces are candidates, not confirmed hits.
func (t *Tree) Traverse(test HitTest) (hits []*Face) {
	t.traverse(test, func(_ nodeHandle, n *node) bool {
		hits = append(hits, n.faces...)
		return true
	})
	return
}

// IntersectRay finds the closest face hit by ray, recomputing triangles from
// the mesh. It reports whether hit holds an intersection afterwards.
func (t *Tree) IntersectRay(m Mesh, ray prim.Ray, hit *FaceIntersection) bool {
	t.castRay(ray, meshRayTester{mesh: m, hit: hit})
	return hit.IsIntersection()
}

// IntersectRayPrimitives is IntersectRay against the cached triangles, without
// touching the mesh. The tree must have been built with SavePrimitives.
func (t *Tree) IntersectRayPrimitives(ray prim.Ray, hit *Intersection) bool {
	if !t.cfg.SavePrimitives {
		t.log.Warn("primitive ray query on an octree that does not cache primitives")
		return hit.IsIntersection()
	}

	t.castRay(ray, primitiveRayTester{hit: hit})
	return hit.IsIntersection()
}

// IntersectSphere appends every face overlapping sphere to dst. The bool is
// len(dst) > 0 afterwards, so it is also true when dst came in non-empty and
// nothing new matched.
func (t *Tree) IntersectSphere(m Mesh, sphere prim.Sphere, dst []*Face) ([]*Face, bool) {
	t.traverse(func(box prim.AABox) bool {
		return prim.SphereBox(sphere, box)
	}, func(_ nodeHandle, n *node) bool {
		for _, f := range n.faces {
			if prim.SphereTriangle(sphere, m.FaceTriangle(f.index)) {
				dst = append(dst, f)
			}
		}
		return true
	})
	return dst, len(dst) > 0
}

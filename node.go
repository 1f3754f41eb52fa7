package dynoctree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree/prim"
)

type nodeHandle int32

const nilNode nodeHandle = -1

/* child indices, sign of the child center relative to the parent's:
 *   (-,-,-) -> 0
 *   (-,-,+) -> 1
 *   (-,+,-) -> 2
 *   (-,+,+) -> 3
 *   (+,-,-) -> 4
 *   (+,-,+) -> 5
 *   (+,+,-) -> 6
 *   (+,+,+) -> 7
 */
type node struct {
	id     uint64
	center r3.Vec
	width  float64
	depth  int
	parent nodeHandle

	hasChildren bool
	children    [8]nodeHandle

	faces      []*Face
	primitives map[FaceID]prim.Triangle

	free bool
}

// faceToInsert is a snapshot of the geometry a face is inserted with.
type faceToInsert struct {
	triangle prim.Triangle
	bounds   prim.AABox
	center   r3.Vec
	extent   float64
}

func newFaceToInsert(tri prim.Triangle) (faceToInsert, bool) {
	for _, v := range tri {
		if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return faceToInsert{}, false
		}
	}
	return faceToInsert{
		triangle: tri,
		bounds:   tri.Bounds(),
		center:   tri.Center(),
		extent:   tri.OneDimExtent(),
	}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (n *node) approxContains(v r3.Vec) bool {
	half := n.width * 0.5
	return n.center.X-half <= v.X && v.X <= n.center.X+half &&
		n.center.Y-half <= v.Y && v.Y <= n.center.Y+half &&
		n.center.Z-half <= v.Z && v.Z <= n.center.Z+half
}

func (n *node) fits(f faceToInsert) bool {
	return n.approxContains(f.center) && f.extent <= n.width
}

func (n *node) childIndex(pos r3.Vec) int {
	index := 0
	if n.center.X < pos.X {
		index += 4
	}
	if n.center.Y < pos.Y {
		index += 2
	}
	if n.center.Z < pos.Z {
		index++
	}
	return index
}

// childOffset is the direction from a parent's center to the center of child i.
func childOffset(i int) r3.Vec {
	sign := func(bit int) float64 {
		if i&bit != 0 {
			return 1
		}
		return -1
	}
	return r3.Vec{X: sign(4), Y: sign(2), Z: sign(1)}
}

// divisible reports whether child centers still land a few ulps away from the
// node's center on every axis.
func (n *node) divisible() bool {
	m := math.Max(math.Abs(n.center.X), math.Max(math.Abs(n.center.Y), math.Abs(n.center.Z)))
	ulp := math.Nextafter(m, math.Inf(1)) - m
	return n.width*0.25 > minSubdivisionUlps*ulp
}

const minSubdivisionUlps = 4

// childCenter is computed the same way makeChildren does, so the loose box of
// a child can be tested before the child exists.
func (n *node) childCenter(i int) r3.Vec {
	return r3.Add(n.center, r3.Scale(n.width*0.25, childOffset(i)))
}

// childLooseBox is the loose box of child i: its width is n.width.
func (n *node) childLooseBox(i int) prim.AABox {
	return prim.NewAABox(n.childCenter(i), n.width)
}

func (n *node) isEmpty() bool {
	return len(n.faces) == 0 && !n.hasChildren
}

// looseBox has the node's center and twice its width.
func (n *node) looseBox() prim.AABox {
	return prim.NewAABox(n.center, n.width*2)
}

func (n *node) store(h nodeHandle, f *Face, fi faceToInsert, savePrimitive bool) {
	f.node = h
	f.slot = len(n.faces)
	n.faces = append(n.faces, f)

	if savePrimitive {
		if n.primitives == nil {
			n.primitives = make(map[FaceID]prim.Triangle)
		}
		n.primitives[f.id] = fi.triangle
	}
}

// unlink swap-removes f from the node's face list.
func (n *node) unlink(f *Face) {
	last := len(n.faces) - 1
	moved := n.faces[last]
	n.faces[f.slot] = moved
	moved.slot = f.slot
	n.faces[last] = nil
	n.faces = n.faces[:last]

	delete(n.primitives, f.id)

	f.node = nilNode
	f.slot = -1
}

func (t *Tree) node(h nodeHandle) *node {
	if h < 0 || int(h) >= len(t.nodes) || t.nodes[h].free {
		panic("dangling node handle")
	}
	return t.nodes[h]
}

func (t *Tree) createNode(center r3.Vec, width float64, depth int, parent nodeHandle) nodeHandle {
	var h nodeHandle
	var n *node
	if len(t.unusedNodeIndices) > 0 {
		h, t.unusedNodeIndices = t.unusedNodeIndices[len(t.unusedNodeIndices)-1], t.unusedNodeIndices[:len(t.unusedNodeIndices)-1]
		n = t.nodes[h]
	} else {
		n = &node{}
		h = nodeHandle(len(t.nodes))
		t.nodes = append(t.nodes, n)
	}

	t.nextNodeID++
	faces := n.faces[:0]
	*n = node{
		id:     t.nextNodeID,
		center: center,
		width:  width,
		depth:  depth,
		parent: parent,
		faces:  faces,
	}
	return h
}

func (t *Tree) freeNode(h nodeHandle) {
	n := t.node(h)
	if len(n.faces) > 0 || n.hasChildren {
		panic("freeing non-empty node")
	}
	n.free = true
	n.parent = nilNode
	n.primitives = nil

	t.unusedNodeIndices = append(t.unusedNodeIndices, h)
}

func (t *Tree) makeChildren(h nodeHandle) {
	n := t.node(h)
	if n.hasChildren {
		panic("node already has children")
	}

	for i := range n.children {
		// order is crucial
		n.children[i] = t.createNode(n.childCenter(i), n.width*0.5, n.depth+1, h)
	}
	n.hasChildren = true
}

func (t *Tree) freeChildren(h nodeHandle) {
	n := t.node(h)
	for i, c := range n.children {
		t.freeNode(c)
		n.children[i] = nilNode
	}
	n.hasChildren = false
}

func (t *Tree) allChildrenEmpty(n *node) bool {
	for _, c := range n.children {
		if !t.node(c).isEmpty() {
			return false
		}
	}
	return true
}

// insertIntoNode descends from h while the face is small relative to the
// current node and stores it where it stops. A face only enters a child whose
// loose box, as queries compute it, holds the face's bounds.
func (t *Tree) insertIntoNode(h nodeHandle, f *Face, fi faceToInsert) {
	for {
		n := t.node(h)
		if fi.extent <= n.width*t.cfg.RelativeMinFaceExtent && n.depth < t.cfg.MaxDepth && n.divisible() {
			i := n.childIndex(fi.center)
			if loose := n.childLooseBox(i); loose.Contains(fi.bounds.Min) && loose.Contains(fi.bounds.Max) {
				if !n.hasChildren {
					t.makeChildren(h)
				}
				h = n.children[i]
				continue
			}
		}

		n.store(h, f, fi, t.cfg.SavePrimitives)
		return
	}
}

// deleteFromNode removes f from its node and prunes every ancestor whose
// children all became empty.
func (t *Tree) deleteFromNode(f *Face) {
	n := t.node(f.node)
	n.unlink(f)

	for n.isEmpty() && n.parent != nilNode {
		p := n.parent
		n = t.node(p)
		if !t.allChildrenEmpty(n) {
			return
		}
		t.freeChildren(p)
	}
}

func (t *Tree) info(h nodeHandle) NodeInfo {
	n := t.node(h)
	return NodeInfo{
		ID:       n.id,
		Center:   n.center,
		Width:    n.width,
		Depth:    n.depth,
		NumFaces: len(n.faces),
		Leaf:     !n.hasChildren,
	}
}

package dynoctree

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree/prim"
)

type FaceID = uuid.UUID

// Mesh recomputes face geometry from live vertex positions.
type Mesh interface {
	FaceTriangle(index int) prim.Triangle
}

// Face is the tree's record of an indexed face. It stays valid until the face
// is deleted or the tree is reset.
type Face struct {
	owner *Tree
	id    FaceID
	index int

	node nodeHandle
	slot int
}

func (f *Face) ID() FaceID { return f.id }

// Index is the position of the face in its mesh.
func (f *Face) Index() int { return f.index }

// Node describes the node storing the face. ok is false once the face has
// left the tree.
func (f *Face) Node() (info NodeInfo, ok bool) {
	if f.node == nilNode {
		return NodeInfo{}, false
	}
	return f.owner.info(f.node), true
}

type NodeInfo struct {
	ID       uint64
	Center   r3.Vec
	Width    float64
	Depth    int
	NumFaces int
	Leaf     bool
}

// LooseBox is the culling volume queries test before descending into a node.
func (i NodeInfo) LooseBox() prim.AABox {
	return prim.NewAABox(i.Center, i.Width*2)
}

// Tree is a loose octree over mesh faces. It is not safe for concurrent use.
type Tree struct {
	cfg Config
	log log.FieldLogger

	root         nodeHandle
	rootPosition r3.Vec
	rootWidth    float64
	rootWasSetup bool

	index map[FaceID]*Face

	nodes             []*node
	unusedNodeIndices []nodeHandle
	nextNodeID        uint64
}

func NewTree(cfg Config) (*Tree, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Tree{
		cfg:   cfg,
		log:   cfg.Logger,
		root:  nilNode,
		index: make(map[FaceID]*Face),
	}, nil
}

func (t *Tree) SavesPrimitives() bool { return t.cfg.SavePrimitives }

// SetupRoot pins the position and width of the root created by the next
// insertion.
func (t *Tree) SetupRoot(position r3.Vec, width float64) error {
	if t.HasRoot() {
		return ErrRootExists
	}
	if !(width > 0) || !finite(width) || !finite(position.X) || !finite(position.Y) || !finite(position.Z) {
		return errors.Wrapf(ErrInvalidWidth, "position %v width %v", position, width)
	}

	t.rootWasSetup = true
	t.rootPosition = position
	t.rootWidth = width
	return nil
}

func (t *Tree) InsertFace(id FaceID, index int, tri prim.Triangle) (*Face, error) {
	if t.HasFace(id) {
		return nil, errors.Wrapf(ErrFaceExists, "face %s", id)
	}
	fi, ok := newFaceToInsert(tri)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidTriangle, "face %s", id)
	}

	f := &Face{
		owner: t,
		id:    id,
		index: index,
		node:  nilNode,
		slot:  -1,
	}
	t.insert(f, fi)
	return f, nil
}

func (t *Tree) insert(f *Face, fi faceToInsert) {
	if !t.HasRoot() {
		t.initRoot(fi)
	}
	for !t.node(t.root).fits(fi) {
		t.makeParent(fi)
	}

	t.insertIntoNode(t.root, f, fi)
	t.index[f.id] = f
}

func (t *Tree) DeleteFace(id FaceID) error {
	f, ok := t.index[id]
	if !ok {
		return errors.Wrapf(ErrFaceNotFound, "face %s", id)
	}

	t.remove(f)
	return nil
}

func (t *Tree) remove(f *Face) {
	t.deleteFromNode(f)
	delete(t.index, f.id)

	if t.node(t.root).isEmpty() {
		t.freeNode(t.root)
		t.root = nilNode
	} else {
		t.ShrinkRoot()
	}
}

// RealignFace moves a face whose geometry changed to the node it now belongs
// in. sameNode reports whether it ended up in the node it was stored in
// before; it is false when that node was pruned and recreated.
func (t *Tree) RealignFace(id FaceID, tri prim.Triangle) (f *Face, sameNode bool, err error) {
	f, ok := t.index[id]
	if !ok {
		return nil, false, errors.Wrapf(ErrFaceNotFound, "face %s", id)
	}
	fi, ok := newFaceToInsert(tri)
	if !ok {
		return nil, false, errors.Wrapf(ErrInvalidTriangle, "face %s", id)
	}

	former := t.node(f.node).id
	t.remove(f)
	t.insert(f, fi)
	return f, t.node(f.node).id == former, nil
}

func (t *Tree) initRoot(fi faceToInsert) {
	if !t.rootWasSetup {
		t.rootPosition = fi.center
		t.rootWidth = fi.extent + t.cfg.RootEpsilon
	}
	t.root = t.createNode(t.rootPosition, t.rootWidth, 0, nilNode)
}

// makeParent replaces the root with a node twice as wide, grown towards the
// face, that holds the old root as one of its children.
func (t *Tree) makeParent(fi faceToInsert) {
	root := t.node(t.root)
	half := root.width * 0.5

	var center r3.Vec
	index := 0
	if root.center.X < fi.center.X {
		center.X = root.center.X + half
	} else {
		center.X = root.center.X - half
		index += 4
	}
	if root.center.Y < fi.center.Y {
		center.Y = root.center.Y + half
	} else {
		center.Y = root.center.Y - half
		index += 2
	}
	if root.center.Z < fi.center.Z {
		center.Z = root.center.Z + half
	} else {
		center.Z = root.center.Z - half
		index++
	}

	old := t.root
	h := t.createNode(center, root.width*2, root.depth-1, nilNode)
	if root.isEmpty() {
		// a pinned root that has not received a face yet
		t.freeNode(old)
		t.root = h
		return
	}
	t.makeChildren(h)

	parent := t.node(h)
	t.freeNode(parent.children[index])
	parent.children[index] = old
	root.parent = h
	t.root = h

	t.log.WithFields(log.Fields{
		"center": center,
		"width":  parent.width,
		"depth":  parent.depth,
	}).Debug("octree root grown")
}

// ShrinkRoot replaces the root with its only non-empty child while the root
// stores no faces itself.
func (t *Tree) ShrinkRoot() {
	for t.HasRoot() {
		root := t.node(t.root)
		if len(root.faces) > 0 || !root.hasChildren {
			return
		}

		single := -1
		for i, c := range root.children {
			if !t.node(c).isEmpty() {
				if single != -1 {
					return
				}
				single = i
			}
		}
		if single == -1 {
			return
		}

		keep := root.children[single]
		for i, c := range root.children {
			if i != single {
				t.freeNode(c)
			}
		}
		root.hasChildren = false
		t.freeNode(t.root)

		t.root = keep
		newRoot := t.node(keep)
		newRoot.parent = nilNode

		t.log.WithFields(log.Fields{
			"center": newRoot.center,
			"width":  newRoot.width,
			"depth":  newRoot.depth,
		}).Debug("octree root shrunk")
	}
}

func (t *Tree) HasRoot() bool { return t.root != nilNode }

func (t *Tree) HasFace(id FaceID) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Tree) Face(id FaceID) (*Face, bool) {
	f, ok := t.index[id]
	return f, ok
}

func (t *Tree) NumFaces() int { return len(t.index) }

// ForEachFace calls fn for every indexed face in no particular order. fn must
// not insert, delete or realign faces.
func (t *Tree) ForEachFace(fn func(f *Face)) {
	for _, f := range t.index {
		fn(f)
	}
}

// Reset discards every node and face record, including a pinned root setup.
func (t *Tree) Reset() {
	for _, f := range t.index {
		f.node = nilNode
		f.slot = -1
	}

	t.index = make(map[FaceID]*Face)
	t.nodes = nil
	t.unusedNodeIndices = nil
	t.root = nilNode
	t.rootWasSetup = false

	t.log.Debug("octree reset")
}

// Walk visits nodes depth first, parents before children. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(NodeInfo) bool) {
	t.traverse(nil, func(h nodeHandle, _ *node) bool {
		return fn(t.info(h))
	})
}

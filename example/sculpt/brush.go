package main

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree"
	"github.com/ImVexed/dynoctree/mesh"
	"github.com/ImVexed/dynoctree/prim"
)

var (
	strokes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sculpt",
		Name:      "strokes_total",
		Help:      "Brush strokes by whether the ray hit the mesh.",
	}, []string{"hit"})

	realigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sculpt",
		Name:      "realigned_faces_total",
		Help:      "Faces realigned after a stroke, by whether they changed node.",
	}, []string{"result"})
)

type Brush struct {
	Radius   float64
	Strength float64
}

// Sculptor owns a mesh and the octree indexing it. The mutex lets the metrics
// collector read the tree between strokes.
type Sculptor struct {
	mu    sync.Mutex
	mesh  *mesh.Mesh
	tree  *dynoctree.Tree
	brush Brush

	hit     dynoctree.FaceIntersection
	faces   []*dynoctree.Face
	touched map[int]struct{}
}

func NewSculptor(m *mesh.Mesh, cfg dynoctree.Config, brush Brush) (*Sculptor, error) {
	tree, err := dynoctree.NewTree(cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.NumFaces(); i++ {
		if _, err := tree.InsertFace(m.Face(i).ID, i, m.FaceTriangle(i)); err != nil {
			return nil, err
		}
	}

	return &Sculptor{
		mesh:    m,
		tree:    tree,
		brush:   brush,
		touched: make(map[int]struct{}),
	}, nil
}

type StrokeResult struct {
	Hit      bool
	Position r3.Vec
	Vertices int
	Moved    int
	Stayed   int
}

// Stroke pushes the vertices around the point the ray hits along their
// normals, with a quadratic falloff towards the brush rim.
func (s *Sculptor) Stroke(ray prim.Ray) (StrokeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res StrokeResult
	s.hit.Reset()
	if !s.tree.IntersectRay(s.mesh, ray, &s.hit) {
		strokes.WithLabelValues("false").Inc()
		return res, nil
	}
	strokes.WithLabelValues("true").Inc()
	res.Hit = true
	res.Position = s.hit.Position

	brush := prim.Sphere{Center: s.hit.Position, Radius: s.brush.Radius}
	s.faces, _ = s.tree.IntersectSphere(s.mesh, brush, s.faces[:0])

	type move struct {
		vertex int
		to     r3.Vec
	}
	// normals are taken before anything moves
	var moves []move
	seen := make(map[int]struct{})
	for _, f := range s.faces {
		for _, v := range s.mesh.Face(f.Index()).Vertices {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}

			p := s.mesh.Vertex(v)
			d := r3.Norm(r3.Sub(p, brush.Center))
			if d > brush.Radius {
				continue
			}
			falloff := math.Pow(1-d/brush.Radius, 2)
			n := s.mesh.VertexNormal(v)
			moves = append(moves, move{v, r3.Add(p, r3.Scale(s.brush.Strength*falloff, n))})
		}
	}

	for k := range s.touched {
		delete(s.touched, k)
	}
	for _, mv := range moves {
		for _, f := range s.mesh.MoveVertex(mv.vertex, mv.to) {
			s.touched[f] = struct{}{}
		}
	}
	res.Vertices = len(moves)

	for i := range s.touched {
		_, same, err := s.tree.RealignFace(s.mesh.Face(i).ID, s.mesh.FaceTriangle(i))
		if err != nil {
			return res, err
		}
		if same {
			res.Stayed++
		} else {
			res.Moved++
		}
	}
	realigned.WithLabelValues("same_node").Add(float64(res.Stayed))
	realigned.WithLabelValues("moved").Add(float64(res.Moved))

	log.WithFields(log.Fields{
		"position": res.Position,
		"vertices": res.Vertices,
		"moved":    res.Moved,
		"stayed":   res.Stayed,
	}).Debug("stroke")
	return res, nil
}

func (s *Sculptor) Statistics() dynoctree.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Statistics()
}

// Locked runs fn with exclusive access to the mesh and the tree.
func (s *Sculptor) Locked(fn func(m *mesh.Mesh, t *dynoctree.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.mesh, s.tree)
}

package dynoctree

import log "github.com/sirupsen/logrus"

// Statistics describes the shape of the tree. Depths are absolute, so roots
// created by growth have negative depths. An empty tree reports zero depths.
type Statistics struct {
	NumNodes        int `json:"num_nodes"`
	NumFaces        int `json:"num_faces"`
	MinDepth        int `json:"min_depth"`
	MaxDepth        int `json:"max_depth"`
	MaxFacesPerNode int `json:"max_faces_per_node"`

	NumFacesPerDepth map[int]int `json:"num_faces_per_depth"`
	NumNodesPerDepth map[int]int `json:"num_nodes_per_depth"`
}

func (t *Tree) Statistics() Statistics {
	stats := Statistics{
		NumFacesPerDepth: make(map[int]int),
		NumNodesPerDepth: make(map[int]int),
	}

	first := true
	t.traverse(nil, func(_ nodeHandle, n *node) bool {
		d := n.depth
		f := len(n.faces)

		stats.NumNodes++
		stats.NumFaces += f
		if first || d < stats.MinDepth {
			stats.MinDepth = d
		}
		if first || d > stats.MaxDepth {
			stats.MaxDepth = d
		}
		if f > stats.MaxFacesPerNode {
			stats.MaxFacesPerNode = f
		}
		stats.NumFacesPerDepth[d] += f
		stats.NumNodesPerDepth[d]++

		first = false
		return true
	})

	if stats.NumFaces != t.NumFaces() {
		t.log.WithFields(log.Fields{
			"stats": stats.NumFaces,
			"index": t.NumFaces(),
		}).Error("octree statistics disagree with face index")
	}
	return stats
}

// Package octreemetrics exports octree statistics to Prometheus.
package octreemetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ImVexed/dynoctree"
)

// Collector gathers fresh statistics on every scrape. The stats function runs
// on the scraping goroutine, so it must do its own locking when the tree is
// edited elsewhere.
type Collector struct {
	stats func() dynoctree.Statistics

	nodes         *prometheus.Desc
	faces         *prometheus.Desc
	minDepth      *prometheus.Desc
	maxDepth      *prometheus.Desc
	maxFaces      *prometheus.Desc
	facesPerDepth *prometheus.Desc
	nodesPerDepth *prometheus.Desc
}

func NewCollector(namespace string, constLabels prometheus.Labels, stats func() dynoctree.Statistics) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, constLabels)
	}

	return &Collector{
		stats:         stats,
		nodes:         desc("nodes", "Number of nodes in the tree."),
		faces:         desc("faces", "Number of faces stored in the tree."),
		minDepth:      desc("min_depth", "Smallest node depth."),
		maxDepth:      desc("max_depth", "Largest node depth."),
		maxFaces:      desc("max_faces_per_node", "Largest number of faces stored in a single node."),
		facesPerDepth: desc("depth_faces", "Number of faces stored at a depth.", "depth"),
		nodesPerDepth: desc("depth_nodes", "Number of nodes at a depth.", "depth"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodes
	ch <- c.faces
	ch <- c.minDepth
	ch <- c.maxDepth
	ch <- c.maxFaces
	ch <- c.facesPerDepth
	ch <- c.nodesPerDepth
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}

	gauge(c.nodes, s.NumNodes)
	gauge(c.faces, s.NumFaces)
	gauge(c.minDepth, s.MinDepth)
	gauge(c.maxDepth, s.MaxDepth)
	gauge(c.maxFaces, s.MaxFacesPerNode)
	for d, n := range s.NumFacesPerDepth {
		gauge(c.facesPerDepth, n, strconv.Itoa(d))
	}
	for d, n := range s.NumNodesPerDepth {
		gauge(c.nodesPerDepth, n, strconv.Itoa(d))
	}
}

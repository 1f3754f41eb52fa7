package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ImVexed/dynoctree"
	"github.com/ImVexed/dynoctree/debugdraw"
	"github.com/ImVexed/dynoctree/mesh"
	"github.com/ImVexed/dynoctree/octreemetrics"
	"github.com/ImVexed/dynoctree/prim"
)

// This example sculpts a sphere with random brush strokes, keeping an octree
// over its faces up to date as the vertices move.

// Keeps the cli package from reading obfuscated field names.
var _ = reflect.TypeOf(config{})

type config struct {
	Radius         float64       `cli:"" env:"SCULPT_RADIUS"          help:"Radius of the starting sphere."`
	Rings          int           `cli:"" env:"SCULPT_RINGS"           help:"Latitude subdivisions of the sphere."`
	Segments       int           `cli:"" env:"SCULPT_SEGMENTS"        help:"Longitude subdivisions of the sphere."`
	BrushRadius    float64       `cli:"" env:"SCULPT_BRUSH_RADIUS"    help:"Brush radius in world units."`
	BrushStrength  float64       `cli:"" env:"SCULPT_BRUSH_STRENGTH"  help:"Displacement at the brush center, negative to carve."`
	Strokes        int           `cli:"" env:"SCULPT_STROKES"         help:"Number of strokes before exiting."`
	TickRate       time.Duration `cli:"" env:"SCULPT_TICK_RATE"       help:"Interval between strokes."`
	SavePrimitives bool          `cli:"" env:"SCULPT_SAVE_PRIMITIVES" help:"Cache triangles in the tree nodes."`
	MetricsAddr    string        `cli:"" env:"SCULPT_METRICS_ADDR"    help:"Listening address for Prometheus metrics, empty to disable."`
	StatsFile      string        `cli:"" env:"SCULPT_STATS_FILE"      help:"Where to dump the final tree statistics as JSON."`
	ImageFile      string        `cli:"" env:"SCULPT_IMAGE_FILE"      help:"Where to dump a BMP of the final tree."`
	ImageScale     float64       `cli:"" env:"SCULPT_IMAGE_SCALE"     help:"Pixels per world unit in the BMP."`
	LogLevel       string        `cli:"" env:"SCULPT_LOG_LEVEL"       help:"Log level (debug|info|warning|error)."`
	Help           bool          `cli:"" env:"-"                      help:"Show help."`
}

func main() {
	conf := config{
		Radius:        100,
		Rings:         48,
		Segments:      96,
		BrushRadius:   20,
		BrushStrength: 4,
		Strokes:       300,
		TickRate:      time.Second / 30,
		MetricsAddr:   ":18191",
		StatsFile:     "./sculpt.json",
		ImageFile:     "./sculpt.bmp",
		ImageScale:    2,
		LogLevel:      log.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Sculpts a sphere while keeping an octree of its faces.").
		Options(&conf)
	cli.Load()

	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	m := mesh.UVSphere(r3.Vec{}, conf.Radius, conf.Rings, conf.Segments)
	log.Printf("Indexing %d faces\n", m.NumFaces())

	start := time.Now()
	sculptor, err := NewSculptor(m, dynoctree.Config{
		SavePrimitives: conf.SavePrimitives,
		Logger:         log.WithField("tree", "sphere"),
	}, Brush{
		Radius:   conf.BrushRadius,
		Strength: conf.BrushStrength,
	})
	if err != nil {
		log.Fatal(errors.Wrap(err, "building tree"))
	}
	log.Println("Indexed in", time.Since(start))

	if conf.MetricsAddr != "" {
		prometheus.MustRegister(octreemetrics.NewCollector("sculpt_tree", nil, sculptor.Statistics))

		var admin http.ServeMux
		admin.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: conf.MetricsAddr, Handler: &admin}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error(errors.Wrap(err, "serving metrics"))
			}
		}()
		defer srv.Close()
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(conf.TickRate)
	defer ticker.Stop()

	hits := 0
	log.Println("Starting sculpt loop!")
loop:
	for n := 0; n < conf.Strokes; n++ {
		var tick time.Time
		select {
		case <-ctx.Done():
			break loop
		case tick = <-ticker.C:
		}
		if delta := time.Since(tick); delta > conf.TickRate/2 {
			log.Warnln("Tick rate slipped", delta)
		}

		res, err := sculptor.Stroke(randomRay(rnd, conf.Radius*4))
		if err != nil {
			log.Fatal(errors.Wrapf(err, "stroke %d", n))
		}
		if res.Hit {
			hits++
		}
	}

	stats := sculptor.Statistics()
	log.WithFields(log.Fields{
		"hits":      hits,
		"nodes":     stats.NumNodes,
		"faces":     stats.NumFaces,
		"max_depth": stats.MaxDepth,
	}).Info("sculpting done")

	if err := dumpStats(conf.StatsFile, stats); err != nil {
		log.Error(err)
	}
	if err := dumpImage(conf.ImageFile, conf.ImageScale, sculptor); err != nil {
		log.Error(err)
	}
}

// randomRay starts on a sphere of the given radius and aims at the origin.
func randomRay(rnd *rand.Rand, radius float64) prim.Ray {
	dir := r3.Unit(r3.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()})
	return prim.NewRay(r3.Scale(radius, dir), r3.Scale(-1, dir))
}

func dumpStats(path string, stats dynoctree.Statistics) error {
	if path == "" {
		return nil
	}
	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding statistics")
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "writing %s", path)
}

func dumpImage(path string, scale float64, s *Sculptor) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	log.Println("Dumping image of tree at", path)
	return s.Locked(func(m *mesh.Mesh, t *dynoctree.Tree) error {
		return debugdraw.Encode(f, t, m, debugdraw.Options{Scale: scale})
	})
}

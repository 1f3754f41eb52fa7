package dynoctree

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultRelativeMinFaceExtent = 0.1
	DefaultMaxDepth              = 32
	DefaultRootEpsilon           = 1e-6
)

type Config struct {
	// SavePrimitives caches each face's triangle in the node storing it, which
	// IntersectRayPrimitives needs. Fixed for the lifetime of the tree.
	SavePrimitives bool

	// RelativeMinFaceExtent is the fraction of a node's width below which a
	// face is pushed into the node's children. Must be in (0, 0.5) so a face
	// can never fit two siblings at once.
	RelativeMinFaceExtent float64

	// MaxDepth stops subdivision. Depth is counted from the first root, which
	// has depth 0, so it bounds the smallest node width rather than the height
	// of the tree.
	MaxDepth int

	// RootEpsilon is added to the first face's extent when deriving the root
	// width, so point-like faces still get a non-empty root.
	RootEpsilon float64

	Logger log.FieldLogger
}

func DefaultConfig() Config {
	return Config{
		RelativeMinFaceExtent: DefaultRelativeMinFaceExtent,
		MaxDepth:              DefaultMaxDepth,
		RootEpsilon:           DefaultRootEpsilon,
		Logger:                log.StandardLogger(),
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RelativeMinFaceExtent == 0 {
		c.RelativeMinFaceExtent = d.RelativeMinFaceExtent
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.RootEpsilon == 0 {
		c.RootEpsilon = d.RootEpsilon
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

func (c Config) validate() error {
	switch {
	case !(c.RelativeMinFaceExtent > 0 && c.RelativeMinFaceExtent < 0.5):
		return errors.Wrapf(ErrInvalidConfig, "relative min face extent %v not in (0, 0.5)", c.RelativeMinFaceExtent)
	case c.MaxDepth < 0:
		return errors.Wrapf(ErrInvalidConfig, "max depth %d is negative", c.MaxDepth)
	case !(c.RootEpsilon > 0) || math.IsInf(c.RootEpsilon, 1):
		return errors.Wrapf(ErrInvalidConfig, "root epsilon %v must be positive and finite", c.RootEpsilon)
	}
	return nil
}

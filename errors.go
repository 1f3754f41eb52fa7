package dynoctree

import "github.com/pkg/errors"

// Precondition violations. Operations check these before touching the tree,
// so a returned error means nothing changed.
var (
	ErrFaceExists      = errors.New("face already indexed")
	ErrFaceNotFound    = errors.New("face not indexed")
	ErrRootExists      = errors.New("root already exists")
	ErrInvalidWidth    = errors.New("root width must be positive")
	ErrInvalidTriangle = errors.New("triangle has non-finite coordinates")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Package debugdraw renders an octree seen from above (+Z) into a bitmap.
package debugdraw

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"github.com/ImVexed/dynoctree"
	"github.com/ImVexed/dynoctree/prim"
)

var ErrEmptyTree = errors.New("tree has no root")

var (
	NodeColor  = color.RGBA{255, 0, 0, 255}
	LooseColor = color.RGBA{96, 0, 0, 255}
	FaceColor  = color.RGBA{0, 255, 0, 255}
)

type Options struct {
	// Pixels per world unit.
	Scale float64
	// Also outline the loose box of every node.
	Loose bool
}

// Image projects node bounds and, when m is not nil, face outlines onto the XY
// plane. The frame covers the loose box of the root.
func Image(t *dynoctree.Tree, m dynoctree.Mesh, opts Options) (*image.RGBA, error) {
	if !t.HasRoot() {
		return nil, ErrEmptyTree
	}
	if !(opts.Scale > 0) || math.IsInf(opts.Scale, 0) {
		return nil, errors.Errorf("invalid scale %v", opts.Scale)
	}

	var frameBox prim.AABox
	t.Walk(func(n dynoctree.NodeInfo) bool {
		frameBox = n.LooseBox()
		return false
	})

	size := int(math.Ceil(frameBox.Size().X*opts.Scale)) + 1
	frame := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	// world to pixel, y grows downwards in the image
	px := func(x, y float64) (int, int) {
		return int((x - frameBox.Min.X) * opts.Scale), int((frameBox.Max.Y - y) * opts.Scale)
	}

	col := NodeColor

	HLine := func(x1, y, x2 int) {
		for ; x1 <= x2; x1++ {
			frame.Set(x1, y, col)
		}
	}

	VLine := func(x, y1, y2 int) {
		for ; y1 <= y2; y1++ {
			frame.Set(x, y1, col)
		}
	}

	Rect := func(b prim.AABox) {
		x1, y2 := px(b.Min.X, b.Min.Y)
		x2, y1 := px(b.Max.X, b.Max.Y)
		HLine(x1, y1, x2)
		HLine(x1, y2, x2)
		VLine(x1, y1, y2)
		VLine(x2, y1, y2)
	}

	// Line is Bresenham's algorithm
	Line := func(x1, y1, x2, y2 int) {
		dx, dy := abs(x2-x1), -abs(y2-y1)
		sx, sy := sign(x2-x1), sign(y2-y1)
		e := dx + dy
		for {
			frame.Set(x1, y1, col)
			if x1 == x2 && y1 == y2 {
				return
			}
			e2 := 2 * e
			if e2 >= dy {
				e += dy
				x1 += sx
			}
			if e2 <= dx {
				e += dx
				y1 += sy
			}
		}
	}

	if opts.Loose {
		col = LooseColor
		t.Walk(func(n dynoctree.NodeInfo) bool {
			Rect(n.LooseBox())
			return true
		})
	}

	col = NodeColor
	t.Walk(func(n dynoctree.NodeInfo) bool {
		Rect(prim.NewAABox(n.Center, n.Width))
		return true
	})

	if m == nil {
		return frame, nil
	}

	col = FaceColor
	t.ForEachFace(func(f *dynoctree.Face) {
		tri := m.FaceTriangle(f.Index())
		for i := range tri {
			a, b := tri[i], tri[(i+1)%3]
			x1, y1 := px(a.X, a.Y)
			x2, y2 := px(b.X, b.Y)
			Line(x1, y1, x2, y2)
		}
	})
	return frame, nil
}

// Encode writes the image produced by Image as a BMP.
func Encode(w io.Writer, t *dynoctree.Tree, m dynoctree.Mesh, opts Options) error {
	frame, err := Image(t, m, opts)
	if err != nil {
		return err
	}
	return errors.Wrap(bmp.Encode(w, frame), "encoding bmp")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

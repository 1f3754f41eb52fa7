package debugdraw

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/ImVexed/dynoctree"
	"github.com/ImVexed/dynoctree/mesh"
)

func newGridTree(t *testing.T) (*dynoctree.Tree, *mesh.Mesh) {
	m := mesh.Grid(4, 8)
	tree, err := dynoctree.NewTree(dynoctree.Config{})
	require.NoError(t, err)
	for i := 0; i < m.NumFaces(); i++ {
		_, err := tree.InsertFace(m.Face(i).ID, i, m.FaceTriangle(i))
		require.NoError(t, err)
	}
	return tree, m
}

func countColor(img image.Image, c color.RGBA) (n int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) == c {
				n++
			}
		}
	}
	return
}

func TestEncode(t *testing.T) {
	tree, m := newGridTree(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree, m, Options{Scale: 10, Loose: true}))

	img, err := bmp.Decode(&buf)
	require.NoError(t, err)

	var root dynoctree.NodeInfo
	tree.Walk(func(n dynoctree.NodeInfo) bool {
		root = n
		return false
	})
	require.Equal(t, int(math.Ceil(root.LooseBox().Size().X*10))+1, img.Bounds().Dx())
	require.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())

	require.NotZero(t, countColor(img, NodeColor))
	require.NotZero(t, countColor(img, FaceColor))
}

func TestImageWithoutMesh(t *testing.T) {
	tree, _ := newGridTree(t)

	img, err := Image(tree, nil, Options{Scale: 4})
	require.NoError(t, err)
	require.NotZero(t, countColor(img, NodeColor))
	require.Zero(t, countColor(img, FaceColor))
	require.Zero(t, countColor(img, LooseColor))
}

func TestImageErrors(t *testing.T) {
	tree, err := dynoctree.NewTree(dynoctree.Config{})
	require.NoError(t, err)

	_, err = Image(tree, nil, Options{Scale: 1})
	require.True(t, errors.Is(err, ErrEmptyTree))

	tree, _ = newGridTree(t)
	_, err = Image(tree, nil, Options{})
	require.Error(t, err)
}

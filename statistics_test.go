package dynoctree

import (
	"testing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ImVexed/dynoctree/mesh"
)

func TestStatisticsMismatchLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tree := newTestTree(t, Config{Logger: logger})
	insertMesh(t, tree, mesh.Grid(2, 2))

	tree.Statistics()
	require.Empty(t, hook.AllEntries())

	// an index entry no node stores
	id := uuid.New()
	tree.index[id] = &Face{owner: tree, id: id, node: nilNode, slot: -1}
	stats := tree.Statistics()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, log.ErrorLevel, entry.Level)
	require.Equal(t, stats.NumFaces, entry.Data["stats"])
	require.Equal(t, stats.NumFaces+1, entry.Data["index"])
}

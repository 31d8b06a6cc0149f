package layer_test

import (
	"testing"

	"github.com/luxfi/canopy/internal/layer"
	"github.com/luxfi/canopy/pdag"
	"github.com/stretchr/testify/require"
)

func TestPlanPartitionsVariablesAndGates(t *testing.T) {
	b := pdag.NewBuilder()
	x := b.BasicEvent(1, 0.1)
	y := b.BasicEvent(2, 0.2)
	a := b.BasicEvent(3, 0.3)
	or := b.Gate(4, pdag.Or, pdag.Pos(x), pdag.Pos(y))
	root := b.Gate(5, pdag.And, pdag.Pos(a), pdag.Pos(or))
	b.SetRoot(root)

	waves, err := layer.Plan(b.Build())
	require.NoError(t, err)
	require.Len(t, waves, 3)

	require.Len(t, waves[0].Variables, 3)
	require.Empty(t, waves[0].Gates)

	require.Empty(t, waves[1].Variables)
	require.Equal(t, []pdag.Node{or}, waves[1].Gates[pdag.Or])
	require.Equal(t, []pdag.Connective{pdag.Or}, waves[1].Connectives)

	require.Equal(t, []pdag.Node{root}, waves[2].Gates[pdag.And])
}

func TestPlanRejectsUnsupportedConnective(t *testing.T) {
	b := pdag.NewBuilder()
	x := b.BasicEvent(1, 0.5)
	root := b.Gate(2, pdag.Iff, pdag.Pos(x))
	b.SetRoot(root)

	_, err := layer.Plan(b.Build())
	require.ErrorIs(t, err, layer.ErrUnsupportedConnective)
}

func TestPlanDetectsDuplicateIndexAcrossDistinctNodes(t *testing.T) {
	b := pdag.NewBuilder()
	a := b.BasicEvent(1, 0.1)
	// Two distinct node objects both claiming index 2.
	aliasIndex := 2
	n1 := b.Gate(aliasIndex, pdag.Not, pdag.Pos(a))
	n2 := b.Gate(aliasIndex, pdag.Null, pdag.Pos(a))
	root := b.Gate(3, pdag.And, pdag.Pos(n1), pdag.Pos(n2))
	b.SetRoot(root)

	_, err := layer.Plan(b.Build())
	require.ErrorIs(t, err, layer.ErrDuplicateIndex)
}

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countReachable walks from ptr, counting every node reachable through a
// materialised edge (including ptr itself).
func countReachable(t *Tree, ptr int32) int {
	if ptr == None {
		return 0
	}
	n := t.Node(ptr)
	total := 1
	for i := range n.Actions {
		total += countReachable(t, n.Actions[i].Child)
	}
	return total
}

func TestPushDeleteAccounting(t *testing.T) {
	tree := NewCap(8)
	require.Equal(t, 8, tree.Cap())
	require.Equal(t, 0, tree.Len())
	require.True(t, tree.IsEmpty())

	var idx []int32
	for i := 0; i < 8; i++ {
		p := tree.Push()
		require.NotEqual(t, None, p)
		idx = append(idx, p)
	}
	require.Equal(t, 8, tree.Len())
	require.Equal(t, None, tree.Push(), "arena at capacity must report full via None")

	// property 1: used + free_list_length == cap
	tree.Delete(idx[3])
	require.Equal(t, 7, tree.Len())
	freed := tree.Push()
	require.Equal(t, idx[3], freed, "the freed slot is handed back out first (LIFO free list)")
}

func TestDeleteSubtreeFreesWholeSubtree(t *testing.T) {
	tree := NewCap(16)
	root := tree.Push()
	tree.MakeRoot(root)

	child0 := tree.Push()
	child1 := tree.Push()
	grandchild := tree.Push()

	rootNode := tree.Node(root)
	rootNode.Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: child0},
		{Move: 1, Policy: 0.5, Child: child1},
	}
	tree.Node(child0).Actions = []Edge{{Move: 0, Policy: 1, Child: grandchild}}

	require.Equal(t, 4, tree.Len())
	require.Equal(t, 4, countReachable(tree, root))

	tree.Clear()
	require.Equal(t, 0, tree.Len())
	require.Equal(t, None, tree.Root())
}

func TestMakeRootResetsState(t *testing.T) {
	tree := NewCap(4)
	p := tree.Push()
	tree.Node(p).State = State{Outcome: Won, Plies: 3}
	tree.MakeRoot(p)
	require.Equal(t, State{Outcome: Ongoing}, tree.Node(p).State)
	require.Equal(t, p, tree.Root())
}

func TestNodeQAndVarBounds(t *testing.T) {
	tree := NewCap(2)
	p := tree.Push()
	n := tree.Node(p)
	require.Equal(t, float32(0), n.Q())
	require.Equal(t, float32(0), n.Var())

	n.Visits = 4
	n.Sum = 2
	n.SumSq = 1.5
	require.InDelta(t, 0.5, n.Q(), 1e-6)
	require.GreaterOrEqual(t, n.Var(), float32(0))
}

package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castling-labs/puct/arena"
	"github.com/castling-labs/puct/game"
	"github.com/castling-labs/puct/mctsparams"
)

// buildChainNodes returns a long single-successor chain (state i always
// leads to state i+1), with the last state looping to itself so the chain
// never runs out of successors. A chain with no branching makes every
// iteration's descent deterministic, which is what lets the node counts
// below be computed exactly instead of just bounded.
func buildChainNodes(length int) []graphNode {
	nodes := make([]graphNode, length)
	for i := 0; i < length-1; i++ {
		nodes[i] = graphNode{outcome: game.Ongoing, value: 0.5, to: []int{i + 1}}
	}
	nodes[length-1] = graphNode{outcome: game.Ongoing, value: 0.5, to: []int{length - 1}}
	return nodes
}

// spec.md §8 S4: a subtree two plies below the current root, already
// explored during a prior search, survives into the next turn's tree
// instead of being thrown away and rebuilt from scratch.
func TestSearchCrossTurnReuseS4(t *testing.T) {
	nodes := buildChainNodes(60)

	tree := arena.NewCap(256)
	s := NewSearcher(tree, mctsparams.Default(), newGraphGame(nodes), nil, nil)
	s.Search(Limits{MaxNodes: 50}, false, nil, nil)

	lenBefore := tree.Len()
	require.Equal(t, 50, lenBefore)

	prevRoot := newGraphGame(nodes) // the board the current tree's root was built from

	newRootBoard := newGraphGame(nodes)
	newRootBoard.cur = 2 // two plies down: the opponent's reply, then our own move

	s.SetRoot(newRootBoard, nil)
	s.Search(Limits{MaxNodes: 1}, false, nil, prevRoot)

	// Reused nodes keep whatever visit count they had accumulated before
	// this call; a cleared-and-rebuilt tree would start the new root at a
	// small visit count instead.
	rootNode := tree.Node(tree.Root())
	require.Greater(t, rootNode.Visits, uint32(10))

	// Everything above the matched node (the old root and its one
	// intermediate ancestor) is freed; the one iteration just run extends
	// the kept chain by exactly one more node.
	require.Equal(t, lenBefore-1, tree.Len())
}

// spec.md §8 S4 (no-match branch): when the reported new root cannot be
// found within two plies of the previous root, the tree is discarded and
// rebuilt, never left pointing at a stale position.
func TestSearchCrossTurnReuseClearsOnMismatch(t *testing.T) {
	nodes := buildChainNodes(20)

	tree := arena.NewCap(256)
	s := NewSearcher(tree, mctsparams.Default(), newGraphGame(nodes), nil, nil)
	s.Search(Limits{MaxNodes: 10}, false, nil, nil)

	prevRoot := newGraphGame(nodes)

	unrelated := newGraphGame(nodes)
	unrelated.cur = 19 // far beyond two plies from the previous root

	s.SetRoot(unrelated, nil)
	s.Search(Limits{MaxNodes: 1}, false, nil, prevRoot)

	rootNode := tree.Node(tree.Root())
	require.Equal(t, uint32(1), rootNode.Visits, "a rebuilt tree's root has only the one visit from this call")
}

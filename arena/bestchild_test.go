package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBestChildPrefersOngoingQ(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	a := tree.Push()
	b := tree.Push()

	tree.Node(a).Visits, tree.Node(a).Sum = 10, 3 // Q = 0.3
	tree.Node(b).Visits, tree.Node(b).Sum = 10, 7 // Q = 0.7

	tree.Node(root).Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: a},
		{Move: 1, Policy: 0.5, Child: b},
	}

	edgeIdx, mov, ok := tree.BestChild(root)
	require.True(t, ok)
	require.Equal(t, 1, edgeIdx)
	require.Equal(t, int32(1), mov)
}

func TestBestChildProvenWinBeatsOngoing(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	losingForOpponent := tree.Push()
	ongoing := tree.Push()

	tree.Node(losingForOpponent).State = State{Outcome: Lost, Plies: 4}
	tree.Node(ongoing).Visits, tree.Node(ongoing).Sum = 10, 9 // Q = 0.9

	tree.Node(root).Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: ongoing},
		{Move: 1, Policy: 0.5, Child: losingForOpponent},
	}

	_, mov, ok := tree.BestChild(root)
	require.True(t, ok)
	require.Equal(t, int32(1), mov, "a proven win must outrank any unproven Q, however high")
}

// spec.md §8 S6: between two winning lines of proof distance 1 and 3, the
// shorter proof wins.
func TestBestChildMateInTwoPreference(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	shortProof := tree.Push()
	longProof := tree.Push()

	tree.Node(shortProof).State = State{Outcome: Lost, Plies: 0} // mate in 1
	tree.Node(longProof).State = State{Outcome: Lost, Plies: 2}  // mate in 3

	tree.Node(root).Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: longProof},
		{Move: 1, Policy: 0.5, Child: shortProof},
	}

	_, mov, ok := tree.BestChild(root)
	require.True(t, ok)
	require.Equal(t, int32(1), mov)
}

func TestBestChildPushesProvenLossToBottom(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	losing := tree.Push()
	ongoing := tree.Push()

	tree.Node(losing).State = State{Outcome: Won, Plies: 1} // bad for root
	tree.Node(ongoing).Visits, tree.Node(ongoing).Sum = 10, 1

	tree.Node(root).Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: losing},
		{Move: 1, Policy: 0.5, Child: ongoing},
	}

	_, mov, ok := tree.BestChild(root)
	require.True(t, ok)
	require.Equal(t, int32(1), mov, "even a weak Q beats a proven loss")
}

func TestBestChildLongerLossProofPreferred(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	quickLoss := tree.Push()
	slowLoss := tree.Push()

	tree.Node(quickLoss).State = State{Outcome: Won, Plies: 0}
	tree.Node(slowLoss).State = State{Outcome: Won, Plies: 5}

	tree.Node(root).Actions = []Edge{
		{Move: 0, Policy: 0.5, Child: quickLoss},
		{Move: 1, Policy: 0.5, Child: slowLoss},
	}

	_, mov, ok := tree.BestChild(root)
	require.True(t, ok)
	require.Equal(t, int32(1), mov, "losing slower is preferred over losing fast")
}

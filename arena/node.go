// Package arena implements the bounded node/edge pool that backs the PUCT
// search: a pre-allocated slice of Nodes threaded into a free list, plus the
// cross-turn subtree-reuse matcher.
package arena

import "fmt"

// None is the sentinel index meaning "no node"/"not yet materialised".
const None int32 = -1

// Mark is a two-state (plus empty) generation tag used by DeleteSubtree to
// sweep a tree in a single DFS pass: flip the kept subtree's mark, then
// free every reachable node still bearing the old mark.
type Mark uint8

const (
	MarkEmpty Mark = iota
	MarkVar1
	MarkVar2
)

// Flip returns the other non-empty mark.
func (m Mark) Flip() Mark {
	if m == MarkVar1 {
		return MarkVar2
	}
	return MarkVar1
}

// Outcome is the node's proven/unproven state. A proven Won/Lost carries the
// ply distance to the outcome, used to prefer shorter proofs.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Draw
	Lost
	Won
)

func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Draw:
		return "draw"
	case Lost:
		return "lost"
	case Won:
		return "won"
	}
	return "unknown"
}

// State packs Outcome with its ply distance for proven outcomes.
type State struct {
	Outcome Outcome
	Plies   uint8 // meaningful only for Lost/Won
}

// Terminal reports whether the state ends the game (Draw, Lost or Won).
func (s State) Terminal() bool { return s.Outcome != Ongoing }

func (s State) String() string {
	if s.Outcome == Won || s.Outcome == Lost {
		return fmt.Sprintf("%s(%d)", s.Outcome, s.Plies)
	}
	return s.Outcome.String()
}

// Edge is a per-action record hanging off a parent Node: the move, its
// policy prior, and the child's arena index (or None if not yet
// materialised). Visit/Q/variance statistics live on the Node itself
// (DESIGN.md Open Question 1) and are read through Child when present;
// an unmaterialised edge has no statistics of its own and selection falls
// back to parent-derived first-play urgency.
type Edge struct {
	Move   int32
	Policy float32
	Child  int32
}

// Unmaterialised reports whether the edge's child has not yet been pushed.
func (e *Edge) Unmaterialised() bool { return e.Child == None }

// Node represents a game state reached during search.
type Node struct {
	State    State
	Actions  []Edge
	Expanded bool

	Visits uint32
	Sum    float32
	SumSq  float32

	mark    Mark
	fwdLink int32 // free-list thread while the node is free; unused otherwise
}

// reset restores a node to its pristine, unexpanded state. Used both by
// Delete (returning to the free list) and by Push (handing out a fresh node).
func (n *Node) reset() {
	n.State = State{Outcome: Ongoing}
	if n.Actions != nil {
		n.Actions = n.Actions[:0]
	}
	n.Expanded = false
	n.Visits = 0
	n.Sum = 0
	n.SumSq = 0
	n.mark = MarkEmpty
	n.fwdLink = None
}

// Format implements fmt.Formatter for compact debugging output.
func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{state=%v visits=%d q=%.3f edges=%d expanded=%t}", n.State, n.Visits, n.Q(), len(n.Actions), n.Expanded)
}

// Q is the node's mean simulation result, viewed from the perspective of the
// side to move at its parent (i.e. the opponent of the side to move at this
// node). Zero for an unvisited node.
func (n *Node) Q() float32 {
	if n.Visits == 0 {
		return 0
	}
	return n.Sum / float32(n.Visits)
}

// Var is the node's result variance, clamped at zero (spec §3: variance =
// max(0, sum_sq/visits - (sum/visits)^2)).
func (n *Node) Var() float32 {
	if n.Visits == 0 {
		return 0
	}
	mean := n.Sum / float32(n.Visits)
	v := n.SumSq/float32(n.Visits) - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

package arena

import "github.com/chewxy/math32"

// BestChildByKey returns the index of ptr's highest-scoring materialised
// child edge under key, and that edge's move. Grounded on
// original_source/src/tree.rs::get_best_child_by_key.
func (t *Tree) BestChildByKey(ptr int32, key func(e *Edge) float32) (edgeIdx int, mov int32, ok bool) {
	n := &t.nodes[ptr]
	best := -1
	bestScore := math32.Inf(-1)
	for i := range n.Actions {
		score := key(&n.Actions[i])
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best, n.Actions[best].Move, true
}

// BestChild ranks ptr's children the way a reporting/bestmove extraction
// pass should (spec.md §4.G): a proven win is preferred over anything
// unproven, shorter proofs beat longer ones, proven losses are pushed to
// the bottom (longer loss proofs preferred, i.e. "lose as slowly as
// possible"), and among non-terminal/equal-proof edges Q wins.
func (t *Tree) BestChild(ptr int32) (edgeIdx int, mov int32, ok bool) {
	return t.BestChildByKey(ptr, func(e *Edge) float32 {
		return t.rank(e)
	})
}

// rank produces a single orderable score for an edge, folding in proof
// status as described on BestChild.
func (t *Tree) rank(e *Edge) float32 {
	const (
		wonBase  = 1_000_000.0
		lostBase = -1_000_000.0
	)
	if e.Child == None {
		return 0 // FPU-less: unmaterialised edges rank at Q = 0, the lowest Q
	}
	child := &t.nodes[e.Child]
	switch child.State.Outcome {
	case Won:
		// Shorter proof for the child means a *worse* outcome for us
		// (we're ranking from the parent's perspective, and a child
		// reporting Won is a loss for us): push to the bottom, longest
		// proof preferred.
		return lostBase + float32(child.State.Plies)
	case Lost:
		// Child reporting Lost is a win for us: prefer shorter proofs.
		return wonBase - float32(child.State.Plies)
	default:
		return child.Q()
	}
}

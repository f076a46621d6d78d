package search

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/castling-labs/puct/arena"
	"github.com/castling-labs/puct/game"
)

// bestMove returns ptr's best edge by arena.Tree.BestChild's ranking
// (proven wins first, shortest proof; then Q; proven losses pushed to the
// bottom, longest proof preferred — spec.md §4.G) along with that child's
// Q, read from the parent's own perspective (BestChild/rank already
// return child.Q(), i.e. the value as seen by ptr).
func (s *Searcher) bestMove(ptr int32) (edgeIdx int, mov int32, q float32) {
	edgeIdx, mov, ok := s.tree.BestChild(ptr)
	if !ok {
		return 0, 0, 0
	}
	e := s.tree.Node(ptr).Actions[edgeIdx]
	if e.Child == arena.None {
		return edgeIdx, mov, 0
	}
	return edgeIdx, mov, s.tree.Node(e.Child).Q()
}

// pv extracts the principal variation from ptr, following bestMove
// recursively until an unmaterialised edge is reached or depth is
// exhausted (spec.md §4.G).
func (s *Searcher) pv(ptr int32, maxDepth int) []game.Move {
	var line []game.Move
	for i := 0; i < maxDepth; i++ {
		n := s.tree.Node(ptr)
		if len(n.Actions) == 0 {
			break
		}
		edgeIdx, mov, ok := s.tree.BestChild(ptr)
		if !ok {
			break
		}
		line = append(line, game.Move(mov))
		child := n.Actions[edgeIdx].Child
		if child == arena.None {
			break
		}
		ptr = child
	}
	return line
}

// scoreCP converts a Q value in (0,1) to centipawns, clamping q away from
// the open interval's edges to keep the log finite (spec.md §4.G).
func scoreCP(q float32) int {
	if q <= 0 {
		q = 1e-6
	}
	if q >= 1 {
		q = 1 - 1e-6
	}
	return int(-400 * math32.Log(1/q-1))
}

// report builds and emits one Info line for the current tree state.
func (s *Searcher) report(infoFn InfoFunc, depth, seldepth, nodes int, elapsed time.Duration) {
	root := s.tree.Root()
	n := s.tree.Node(root)

	info := Info{
		Depth:    depth,
		SelDepth: seldepth,
		Nodes:    nodes,
		Elapsed:  elapsed,
		HashFull: 1000 * s.tree.Len() / s.tree.Cap(),
		PV:       s.pv(root, seldepth+1),
	}
	if elapsed > 0 {
		info.NPS = int64(float64(nodes) / elapsed.Seconds())
	}

	_, mov, q := s.bestMove(root)
	if len(n.Actions) > 0 {
		for i := range n.Actions {
			if n.Actions[i].Move == mov && n.Actions[i].Child != arena.None {
				child := s.tree.Node(n.Actions[i].Child)
				switch child.State.Outcome {
				case arena.Lost:
					info.Mate = (int(child.State.Plies) + 2) / 2
				case arena.Won:
					info.Mate = -(int(child.State.Plies) + 1) / 2
				default:
					info.ScoreCP = scoreCP(q)
				}
				break
			}
		}
	}

	infoFn(info)
}

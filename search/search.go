// Package search drives the PUCT iteration over an arena.Tree: selection,
// expand-on-second-visit, simulation and backpropagation, plus the
// reporting/bestmove-extraction pass (spec.md §4.F, §4.G). It is generic
// over game.Capability and never imports a concrete game; positions and
// their policy/value outputs are supplied by the caller through
// game.Capability. The only dualnet import is SoftmaxTemperature, used to
// normalise priors at expansion time.
//
// The driver is single-threaded and cooperative (spec.md §5): there is no
// goroutine fan-out here, unlike the teacher's channel-driven mcts.Search.
package search

import (
	"time"

	"github.com/castling-labs/puct/arena"
	"github.com/castling-labs/puct/game"
	"github.com/castling-labs/puct/mctsparams"
)

// Limits bounds one call to Search. A nil/zero field means "no bound from
// this source" — at least one of MaxTime, MaxDepth or MaxNodes should be
// set, or the search runs until the arena fills up.
type Limits struct {
	MaxTime  *time.Duration
	MaxDepth int
	MaxNodes int
}

// Info is one "info depth ..." line's worth of search progress, emitted
// whenever the running average selection depth increases (spec.md §4.G).
type Info struct {
	Depth    int
	SelDepth int
	Nodes    int
	Elapsed  time.Duration
	NPS      int64
	HashFull int // per mille, 1000*used/cap
	ScoreCP  int // centipawns; meaningless if Mate != 0
	Mate     int // full moves to mate, negative when being mated; 0 if not a proven mate
	PV       []game.Move
}

// InfoFunc receives one Info per depth increase. A nil InfoFunc disables
// reporting regardless of the emitInfo argument to Search.
type InfoFunc func(Info)

// Searcher owns one arena.Tree and runs repeated searches against it,
// reusing the tree across turns via arena.Tree.TryReuse (spec.md §4.E).
type Searcher struct {
	tree   *arena.Tree
	params mctsparams.Config

	// scratch state reused across iterations to avoid per-iteration
	// allocation of the board/stack/path slices.
	board game.Capability
	stack []uint64
	path  []int32

	root      game.Capability
	baseStack []uint64

	infoFn InfoFunc
}

// NewSearcher builds a Searcher over tree, ready to search from root.
// baseStack is the position-hash history leading up to root (for
// repetition detection across the game, not just within one search).
// infoFn receives progress reports when a Search call is made with
// emitInfo set; it may be nil.
func NewSearcher(tree *arena.Tree, params mctsparams.Config, root game.Capability, baseStack []uint64, infoFn InfoFunc) *Searcher {
	return &Searcher{
		tree:      tree,
		params:    params,
		root:      root,
		baseStack: append([]uint64(nil), baseStack...),
		infoFn:    infoFn,
	}
}

// SetRoot reassigns the position to search from and its hash history. Pair
// this with a prevRoot argument to the next Search call so Tree.TryReuse
// can carry work over between turns (spec.md §4.E).
func (s *Searcher) SetRoot(root game.Capability, baseStack []uint64) {
	s.root = root
	s.baseStack = append(s.baseStack[:0], baseStack...)
}

// Search runs PUCT iterations against s.tree until a Limits condition
// fires, then returns the root's best move and that edge's Q (spec.md §6
// "External Interfaces", §4.G "Action returned"). prevRoot is the board
// the tree's current root was built from (nil if none, e.g. the first
// search of a match); Search attempts to reuse the matching subtree before
// running any iterations. totalNodes, if non-nil, accumulates the node
// count across repeated calls (mirroring the original's total_nodes
// accumulator across a multi-move bench run).
func (s *Searcher) Search(limits Limits, emitInfo bool, totalNodes *int, prevRoot game.Capability) (game.Move, float32) {
	start := time.Now()

	s.tree.TryReuse(s.root, prevRoot)
	if s.tree.IsEmpty() {
		s.pushRoot()
	}

	var infoFn InfoFunc
	if emitInfo {
		infoFn = s.infoFn
	}

	nodes := 1
	depth := 0
	seldepth := 0
	cumulativeDepth := 0

	maxNodes := limits.MaxNodes
	if maxNodes <= 0 {
		maxNodes = s.tree.Cap()
	}

	for nodes <= maxNodes && nodes <= s.tree.Cap() {
		thisDepth, arenaFull := s.runIteration()
		cumulativeDepth += thisDepth
		avgDepth := cumulativeDepth / nodes
		if thisDepth > seldepth {
			seldepth = thisDepth
		}

		if arenaFull {
			break
		}

		if limits.MaxTime != nil && nodes%128 == 0 && time.Since(start) >= *limits.MaxTime {
			break
		}

		if s.tree.Node(s.tree.Root()).State.Terminal() {
			break
		}

		if avgDepth > depth {
			depth = avgDepth
			if infoFn != nil {
				s.report(infoFn, depth, seldepth, nodes, time.Since(start))
			}
		}

		if limits.MaxDepth > 0 && depth >= limits.MaxDepth {
			break
		}

		nodes++
	}

	if totalNodes != nil {
		*totalNodes += nodes
	}

	rootNode := s.tree.Node(s.tree.Root())
	if len(rootNode.Actions) == 0 {
		// Too small a budget for the root to ever reach its second visit:
		// there is no best edge to report, so the driver falls back to the
		// position's own static evaluation (spec.md §8 S3).
		return 0, s.root.Value()
	}

	_, mov, q := s.bestMove(s.tree.Root())
	return game.Move(mov), q
}

func (s *Searcher) pushRoot() {
	root := s.tree.Push()
	if root == arena.None {
		panic("search: cannot push root into an empty arena with zero capacity")
	}
	n := s.tree.Node(root)
	n.State = classify(s.root, s.baseStack)
	s.tree.MakeRoot(root)
}

// runIteration performs one select/expand/simulate/backprop pass,
// reporting the selection-stack length it reached and whether it stopped
// early because the arena ran out of capacity (spec.md §4.F "Termination
// conditions ... arena full").
func (s *Searcher) runIteration() (depth int, arenaFull bool) {
	s.board = s.root.Clone()
	s.stack = append(s.stack[:0], s.baseStack...)
	s.path = append(s.path[:0], s.tree.Root())

	ptr := s.tree.Root()
	for {
		n := s.tree.Node(ptr)

		if n.State.Terminal() {
			break
		}

		if !n.Expanded {
			if n.Visits != 1 {
				// First visit to a freshly materialised node: evaluate it
				// as-is (spec.md §4.F "expand on the second visit").
				break
			}
			s.expand(ptr)
			n = s.tree.Node(ptr)
			if len(n.Actions) == 0 {
				// Expanded with no legal moves: the game-side classifier
				// should already have marked this terminal before
				// expansion ever ran. Treat defensively as a dead end.
				n.State = arena.State{Outcome: arena.Draw}
				break
			}
		}

		edgeIdx, provenLoss, provenPlies := s.pickEdge(ptr)
		if provenLoss {
			n.State = arena.State{Outcome: arena.Lost, Plies: provenPlies}
			break
		}

		e := &n.Actions[edgeIdx]
		s.stack = append(s.stack, s.board.Hash())
		s.board.MakeMove(game.Move(e.Move))

		if e.Child == arena.None {
			child := s.tree.Push()
			if child == arena.None {
				arenaFull = true
				break
			}
			e.Child = child
			cn := s.tree.Node(child)
			cn.State = classify(s.board, s.stack)
			ptr = child
			s.path = append(s.path, ptr)
			break
		}

		ptr = e.Child
		s.path = append(s.path, ptr)
	}

	result := s.simulate(ptr)
	s.backprop(result)
	return len(s.path), arenaFull
}

// simulate reads the leaf's value per spec.md §4.F: a proven outcome maps
// to a fixed value, an Ongoing leaf queries the game's static evaluation.
func (s *Searcher) simulate(ptr int32) float32 {
	n := s.tree.Node(ptr)
	switch n.State.Outcome {
	case arena.Draw:
		return 0.5
	case arena.Lost:
		return 0.0
	case arena.Won:
		return 1.0
	default:
		return s.board.Value()
	}
}

// backprop walks s.path from leaf to root, flipping perspective at every
// step, and folds in proof propagation: a child reporting Lost promotes
// its parent to Won (spec.md §4.F "Backpropagate"). An existing proof on a
// node is never overwritten (the absolute proof information is never
// demoted).
func (s *Searcher) backprop(result float32) {
	r := result
	for i := len(s.path) - 1; i >= 0; i-- {
		r = 1 - r
		n := s.tree.Node(s.path[i])
		n.Visits++
		n.Sum += r
		n.SumSq += r * r

		if i < len(s.path)-1 {
			child := s.tree.Node(s.path[i+1])
			if n.State.Outcome == arena.Ongoing && child.State.Outcome == arena.Lost {
				n.State = arena.State{Outcome: arena.Won, Plies: child.State.Plies + 1}
			}
		}
	}
}

// classify asks the game to classify the current position, translating
// game.Outcome into arena.State. Plies starts at 0: a position that is
// itself Lost/Won carries Plies = 0 (the proof terminates here); backprop
// and selection's proven-loss aggregation extend it going up the tree.
func classify(board game.Capability, history []uint64) arena.State {
	switch board.State(history) {
	case game.Draw:
		return arena.State{Outcome: arena.Draw}
	case game.Lost:
		return arena.State{Outcome: arena.Lost, Plies: 0}
	case game.Won:
		return arena.State{Outcome: arena.Won, Plies: 0}
	default:
		return arena.State{Outcome: arena.Ongoing}
	}
}

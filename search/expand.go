package search

import (
	"time"

	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/castling-labs/puct/arena"
	"github.com/castling-labs/puct/dualnet"
)

// expand populates ptr's edges from s.board (spec.md §4.F, the
// "expansion pass triggered by the second visit of an already-reached
// node"): enumerate legal moves, query the policy logit for each, and
// normalise them into a probability distribution via temperature-scaled
// softmax. Each edge starts unmaterialised with zero statistics. When
// DirichletWeight > 0, the root's priors additionally get Dirichlet
// exploration noise mixed in, the way
// the teacher's MCTS.New seeded a single dirichletSample for the whole
// search (here it's drawn fresh per root expansion instead, since this
// core rebuilds/reuses its root across turns rather than owning one tree
// for a whole process lifetime).
func (s *Searcher) expand(ptr int32) {
	n := s.tree.Node(ptr)

	moves := s.board.LegalMoves()
	feats := s.board.PolicyFeatures()

	logits := make([]float32, len(moves))
	for i, mov := range moves {
		logits[i] = s.board.PolicyLogit(mov, feats)
	}

	probs := dualnet.SoftmaxTemperature(logits, s.params.PolicySoftmaxTemperature)

	if ptr == s.tree.Root() && s.params.DirichletWeight > 0 && len(moves) > 0 {
		mixDirichletNoise(probs, s.params.DirichletAlpha, s.params.DirichletWeight)
	}

	if cap(n.Actions) < len(moves) {
		n.Actions = make([]arena.Edge, len(moves))
	} else {
		n.Actions = n.Actions[:len(moves)]
	}
	for i, mov := range moves {
		n.Actions[i] = arena.Edge{Move: int32(mov), Policy: probs[i], Child: arena.None}
	}
	n.Expanded = true
}

// mixDirichletNoise blends Dirichlet(alpha, ..., alpha) noise into probs in
// place: probs[i] = (1-weight)*probs[i] + weight*noise[i]. Grounded on the
// teacher's mcts/tree.go::New, which draws one distmv.NewDirichlet sample
// over the game's whole action space via golang.org/x/exp/rand.
func mixDirichletNoise(probs []float32, alphaParam, weight float32) {
	alpha := make([]float64, len(probs))
	for i := range alpha {
		alpha[i] = float64(alphaParam)
	}
	dist := distmv.NewDirichlet(alpha, distrand.NewSource(uint64(time.Now().UnixNano())))
	noise := dist.Rand(nil)
	for i := range probs {
		probs[i] = (1-weight)*probs[i] + weight*float32(noise[i])
	}
}

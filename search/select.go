package search

import (
	"github.com/chewxy/math32"

	"github.com/castling-labs/puct/arena"
)

// pickEdge runs one PUCT scan over ptr's actions (spec.md §4.F step 3),
// simultaneously tracking the proven-loss aggregation condition: if every
// materialised child is a proven Won(·) from the child's own perspective
// (a loss for ptr) and no unmaterialised edge remains, the scan reports
// provenLoss instead of a selection.
func (s *Searcher) pickEdge(ptr int32) (edgeIdx int, provenLoss bool, provenPlies uint8) {
	n := s.tree.Node(ptr)
	base := s.params.CPUCT
	if ptr == s.tree.Root() {
		base = s.params.RootCPUCT
	}
	cpuctEff := cpuctEffective(base, n.Visits, n.Var(), s.params.CPUCTVarScale, s.params.CPUCTVarWeight)
	fpuParent := 1 - n.Q()

	best := -1
	bestScore := math32.Inf(-1)

	allMaterialisedWon := true
	anyUnmaterialised := false
	var maxWonPlies uint8

	for i := range n.Actions {
		e := &n.Actions[i]

		var score float32
		if e.Child == arena.None {
			anyUnmaterialised = true
			score = fpuParent + cpuctEff*e.Policy
		} else {
			child := s.tree.Node(e.Child)
			score = child.Q() + cpuctEff*e.Policy/float32(1+child.Visits)

			if child.State.Outcome == arena.Won {
				if child.State.Plies > maxWonPlies {
					maxWonPlies = child.State.Plies
				}
			} else {
				allMaterialisedWon = false
			}
		}

		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if !anyUnmaterialised && allMaterialisedWon && len(n.Actions) > 0 {
		return 0, true, maxWonPlies + 1
	}

	return best, false, 0
}

// cpuctEffective implements spec.md §4.F's exploration multiplier,
// grounded on original_source/src/mcts/helpers.rs::get_cpuct. visits is the
// parent's own visit count; the variance term is skipped entirely when
// visits <= 1 (SPEC_FULL.md §7, decision 3).
func cpuctEffective(base float32, visits uint32, varQ, varScale, varWeight float32) float32 {
	v := visits
	if v < 1 {
		v = 1
	}
	cpuct := base * (1 + math32.Log((float32(v)+8192)/8192))

	if visits > 1 {
		frac := math32.Sqrt(varQ) / varScale
		cpuct *= 1 + varWeight*(frac-1)
	}
	return cpuct
}

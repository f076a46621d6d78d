package game

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Inferencer is the policy/value collaborator a Chess position calls into
// for Value and PolicyLogit. dualnet.Net satisfies it; tests substitute a
// stub for deterministic priors (spec.md treats the prior source as a Game
// detail the core never touches directly).
type Inferencer interface {
	Infer(features []float32) (policyLogits []float32, value float32, err error)
}

// actionTable is the fixed move<->index mapping shared by every position in
// one game tree, loaded once from a UCI move list file. The teacher's
// ChessGame loaded this same file per-game into per-instance maps; since
// the table never changes across Clone, one shared read-only table is
// hoisted out so Clone doesn't deep-copy two maps on every node expansion.
type actionTable struct {
	byIndex []string
	byUCI   map[string]int32
}

func loadActionTable(movesFile string) (*actionTable, error) {
	f, err := os.Open(movesFile)
	if err != nil {
		return nil, errors.Wrap(err, "game: open moves file")
	}
	defer f.Close()

	t := &actionTable{byUCI: make(map[string]int32)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		uci := scanner.Text()
		t.byUCI[uci] = int32(len(t.byIndex))
		t.byIndex = append(t.byIndex, uci)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "game: scan moves file")
	}
	return t, nil
}

// Chess is the concrete game.Capability for standard chess, adapted from
// the teacher's game/chess.go, which implemented the older, string-keyed
// State interface in game/state.go and kept a whole undo/redo move history
// for an interactive play loop. The search core never undoes a move once
// it has descended (spec.md §4.A: MakeMove is a one-way transition), so
// Chess only needs the current chess.Game plus a small feature/value cache
// for the position it currently holds.
type Chess struct {
	pos *chess.Game

	actions *actionTable
	net     Inferencer

	// cachedLogits/cachedValue/cachedValid memoize the Infer call for the
	// position currently held: PolicyFeatures and Value called on the same
	// position (with no MakeMove in between) share one forward pass. Clone
	// does not copy the cache.
	cachedLogits []float32
	cachedValue  float32
	cachedValid  bool
}

// NewChess starts a game from the standard starting position. movesFile is
// a newline-delimited list of (almost) every reachable UCI move, fixing
// the action space a policy head emits one logit per, the way the
// teacher's ChessGame constructor did.
func NewChess(movesFile string, net Inferencer) (*Chess, error) {
	actions, err := loadActionTable(movesFile)
	if err != nil {
		return nil, err
	}
	return &Chess{
		pos:     chess.NewGame(chess.UseNotation(chess.UCINotation{})),
		actions: actions,
		net:     net,
	}, nil
}

// Clone implements game.Capability.
func (c *Chess) Clone() Capability {
	return &Chess{
		pos:     c.pos.Clone(),
		actions: c.actions, // shared, read-only
		net:     c.net,
	}
}

// MakeMove implements game.Capability. mov is an index into actions.byIndex.
func (c *Chess) MakeMove(mov Move) {
	uci := c.actions.byIndex[int32(mov)]
	if err := c.pos.MoveStr(uci); err != nil {
		panic(errors.Wrapf(err, "game: illegal move %q applied", uci))
	}
	c.cachedValid = false
}

// UCI returns mov's UCI notation string, for protocol layers.
func (c *Chess) UCI(mov Move) string {
	return c.actions.byIndex[int32(mov)]
}

// LegalMoves implements game.Capability.
func (c *Chess) LegalMoves() []Move {
	valid := c.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		idx, ok := c.actions.byUCI[m.String()]
		if !ok {
			panic(errors.Errorf("game: move %q missing from action table", m.String()))
		}
		moves = append(moves, Move(idx))
	}
	return moves
}

// MaxMoves implements game.Capability: chess's legal branching factor never
// exceeds the fixed action space the move file declares.
func (c *Chess) MaxMoves() int {
	return len(c.actions.byIndex)
}

// State implements game.Capability. Checkmate/stalemate/the rules engine's
// own draw detection come from notnil/chess; threefold repetition against
// the search path (rather than the whole game, which a played-out
// chess.Game tracks on its own) is checked against history, since the
// arena does not otherwise retain per-node position hashes (grounded on
// original_source/src/game.rs's repetition handling).
func (c *Chess) State(history []uint64) Outcome {
	if outcome := c.pos.Outcome(); outcome != chess.NoOutcome {
		if outcome == chess.Draw {
			return Draw
		}
		// Checkmate is always reported from the perspective of the side to
		// move: the mover is checkmated, so Outcome never equals the
		// mover's own color here except via resignation, which this
		// adapter doesn't expose.
		return Lost
	}

	h := c.Hash()
	seen := 0
	for _, past := range history {
		if past == h {
			seen++
		}
	}
	if seen >= 2 {
		return Draw
	}

	return Ongoing
}

// Hash implements game.Capability by folding notnil/chess's 16-byte
// position hash into 64 bits via XOR, the way a transposition key is
// commonly narrowed when the wider hash isn't otherwise needed.
func (c *Chess) Hash() uint64 {
	h := c.pos.Position().Hash()
	lo := binary.LittleEndian.Uint64(h[0:8])
	hi := binary.LittleEndian.Uint64(h[8:16])
	return lo ^ hi
}

// infer runs (and caches) the one Infer call this position needs.
func (c *Chess) infer() {
	if c.cachedValid {
		return
	}
	features := InputFeatures(c)
	logits, value, err := c.net.Infer(features)
	if err != nil {
		// A prior-generation failure degrades to a uniform prior and a
		// neutral value rather than aborting the search; spec.md treats
		// the policy/value source as an unreliable external collaborator.
		logits = make([]float32, c.MaxMoves())
		value = 0.5
	}
	c.cachedLogits = logits
	c.cachedValue = value
	c.cachedValid = true
}

// Value implements game.Capability.
func (c *Chess) Value() float32 {
	c.infer()
	return c.cachedValue
}

// PolicyFeatures implements game.Capability. The returned value is this
// *Chess itself: PolicyLogit below reads the logits cache populated by
// infer, keyed by the receiver rather than by an opaque struct, since the
// cache already lives on c.
func (c *Chess) PolicyFeatures() any {
	c.infer()
	return c
}

// PolicyLogit implements game.Capability.
func (c *Chess) PolicyLogit(mov Move, feats any) float32 {
	src := feats.(*Chess)
	return src.cachedLogits[int32(mov)]
}

// IsSame implements game.Capability.
func (c *Chess) IsSame(other Capability) bool {
	o, ok := other.(*Chess)
	if !ok {
		return false
	}
	return c.Hash() == o.Hash()
}

// Board exposes the underlying board for encoding and diagnostics (e.g.
// cmd/engine's "d" command), mirroring the teacher's Chess.ShowBoard use.
func (c *Chess) Board() *chess.Board {
	return c.pos.Position().Board()
}

// Turn exposes the side to move for encoding.
func (c *Chess) Turn() chess.Color {
	return c.pos.Position().Turn()
}

package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errStub = errors.New("stub inference failure")

// startingMoves lists every legal UCI move from the standard starting
// position, enough for loadActionTable to back a Chess built at the start
// of a game.
var startingMoves = []string{
	"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4", "d2d3", "d2d4",
	"e2e3", "e2e4", "f2f3", "f2f4", "g2g3", "g2g4", "h2h3", "h2h4",
	"b1a3", "b1c3", "g1f3", "g1h3",
}

func writeMovesFile(t *testing.T, moves []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moves.txt")
	content := ""
	for _, m := range moves {
		content += m + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type stubNet struct {
	value  float32
	logits []float32
	err    error
}

func (s *stubNet) Infer(features []float32) ([]float32, float32, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]float32, len(s.logits))
	copy(out, s.logits)
	return out, s.value, nil
}

func TestNewChessLegalMovesFromStart(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{value: 0.5, logits: make([]float32, len(startingMoves))}

	c, err := NewChess(path, net)
	require.NoError(t, err)

	moves := c.LegalMoves()
	require.Len(t, moves, len(startingMoves))
	require.Equal(t, len(startingMoves), c.MaxMoves())
}

func TestMakeMoveAdvancesPosition(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{value: 0.5, logits: make([]float32, len(startingMoves))}

	c, err := NewChess(path, net)
	require.NoError(t, err)

	h0 := c.Hash()
	var e2e4 Move = -1
	for _, m := range c.LegalMoves() {
		if c.UCI(m) == "e2e4" {
			e2e4 = m
			break
		}
	}
	require.NotEqual(t, Move(-1), e2e4)

	c.MakeMove(e2e4)
	require.NotEqual(t, h0, c.Hash(), "hash must change after a move")
	require.Equal(t, Ongoing, c.State(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{value: 0.5, logits: make([]float32, len(startingMoves))}

	c, err := NewChess(path, net)
	require.NoError(t, err)

	clone := c.Clone()
	h := c.Hash()

	var mov Move
	for _, m := range c.LegalMoves() {
		mov = m
		break
	}
	clone.MakeMove(mov)

	require.Equal(t, h, c.Hash(), "mutating the clone must not affect the original")
}

func TestValueFallsBackOnInferError(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{err: errStub}

	c, err := NewChess(path, net)
	require.NoError(t, err)

	require.Equal(t, float32(0.5), c.Value())
}

func TestThreefoldRepetitionIsDraw(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{value: 0.5, logits: make([]float32, len(startingMoves))}

	c, err := NewChess(path, net)
	require.NoError(t, err)

	h := c.Hash()
	history := []uint64{h, h} // this exact position already seen twice before
	require.Equal(t, Draw, c.State(history))
}

func TestIsSameComparesHash(t *testing.T) {
	path := writeMovesFile(t, startingMoves)
	net := &stubNet{value: 0.5, logits: make([]float32, len(startingMoves))}

	a, err := NewChess(path, net)
	require.NoError(t, err)
	b, err := NewChess(path, net)
	require.NoError(t, err)

	require.True(t, a.IsSame(b))
}

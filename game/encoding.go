package game

import "github.com/notnil/chess"

// boardSize is chess's fixed 8x8 board, grounded on the teacher's
// game/encoding.go (which sized its two layers off RowNum*ColNum
// constants from the same package; those constants belonged to the
// dropped training pipeline, so the dimension is named directly here).
const boardSize = 8

// FeatureCount is the width dualnet.Config.Features must be configured
// with to match InputFeatures' output: one piece-occupancy plane plus one
// side-to-move plane, each boardSize*boardSize wide.
const FeatureCount = boardSize * boardSize * 2

// InputFeatures encodes c's position into the network's input layer,
// grounded on the teacher's game/encoding.go::InputEncoder: one plane
// giving each square's occupying piece (a chess.NoPiece square reads as a
// small nonzero constant rather than 0, the teacher's way of keeping an
// empty square distinguishable from a zeroed-out feature), and one plane
// repeating the side to move across every square.
func InputFeatures(c *Chess) []float32 {
	sq := c.Board().SquareMap()
	board := make([]float32, boardSize*boardSize)
	for k, v := range sq {
		if v == chess.NoPiece {
			board[int8(k)] = 0.001
		} else {
			board[int8(k)] = float32(v)
		}
	}

	playerLayer := make([]float32, boardSize*boardSize)
	turn := float32(c.Turn())
	for i := range playerLayer {
		playerLayer[i] = turn
	}

	return append(board, playerLayer...)
}

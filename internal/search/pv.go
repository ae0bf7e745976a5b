package search

import "github.com/hailam/chessplay-uci/internal/board"

// PVTable is the triangular principal-variation table: pvTable.moves[ply]
// holds the best line found from ply onward, refreshed whenever a child
// search improves alpha.
type PVTable struct {
	moves  [MaxPly][MaxPly]board.Move
	length [MaxPly]int
}

// Line returns the principal variation found at the root.
func (pv *PVTable) Line() []board.Move {
	line := make([]board.Move, pv.length[0])
	copy(line, pv.moves[0][:pv.length[0]])
	return line
}

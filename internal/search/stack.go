package search

import "github.com/hailam/chessplay-uci/internal/board"

// stackFrame carries per-ply state needed by child nodes and by the parent
// once a child returns: the move played here (for continuation-history
// lookups two plies down), and bookkeeping for LMR's hindsight adjustment
// and cutoff-count reduction scaling.
type stackFrame struct {
	move      board.Move
	piece     board.Piece
	to        board.Square
	reduction int
	cutoffCnt int
}

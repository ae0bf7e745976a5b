// Package nnue implements the quantised NNUE (Efficiently Updatable Neural
// Network) evaluator: a flat 768-feature input layer with incrementally
// maintained perspective accumulators, feeding 8 output-bucket weight
// vectors selected by piece count.
package nnue

import "github.com/hailam/chessplay-uci/internal/board"

// Network architecture constants.
const (
	NumPerspectives = 2
	NumPieceTypes   = 6 // P, N, B, R, Q, K
	NumSquares      = 64
	// Flat (perspective, piece, square) feature space: 2*6*64 = 768.
	InputFeatures = NumPerspectives * NumPieceTypes * NumSquares

	Hidden     = 1568
	NumBuckets = 8

	// Quantisation.
	QA    = 255
	QB    = 64
	Scale = 400
)

// Bucket returns the output-bucket index for a position with pieceCount
// pieces on the board: (pieceCount-2) / (32/NumBuckets), clamped to
// [0, NumBuckets-1].
func Bucket(pieceCount int) int {
	b := (pieceCount - 2) / (32 / NumBuckets)
	if b < 0 {
		b = 0
	}
	if b >= NumBuckets {
		b = NumBuckets - 1
	}
	return b
}

// screlu applies the squared-clipped-ReLU activation: clamp(x,0,QA)^2.
// Used by dotScreluUnrolled in network.go.
func screlu(x int16) int32 {
	v := int32(x)
	if v < 0 {
		v = 0
	}
	if v > QA {
		v = QA
	}
	return v * v
}

// Evaluator wraps a loaded Network with its own accumulator stack,
// mirroring the board library's make/unmake stack discipline: Push before
// MakeMove, Update after, Pop after UnmakeMove.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator loads weights from weightsFile, or initialises small random
// weights (for tests and for a graceful degrade when no file is configured).
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}
	return &Evaluator{net: net, stack: NewAccumulatorStack()}, nil
}

// Evaluate returns the network's centipawn score from the side to move's
// perspective, clamped so it never collides with mate-score bands.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	pieceCount := pos.AllOccupied.PopCount()
	score := e.net.Forward(acc, pos.SideToMove, Bucket(pieceCount))
	return clampEval(score)
}

// NNUEMax bounds the magnitude of any NNUE evaluation below the mate-score
// band so a large positional score can never be mistaken for a forced mate.
const NNUEMax = 50000 - 100

func clampEval(score int) int {
	if score > NNUEMax {
		return NNUEMax
	}
	if score < -NNUEMax {
		return -NNUEMax
	}
	return score
}

// Push clones the current accumulator pair onto the stack before MakeMove.
func (e *Evaluator) Push() { e.stack.Push() }

// Pop discards the top accumulator frame after UnmakeMove.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Refresh forces a full recomputation of the current accumulator frame.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Update applies the incremental feature delta for a move just made.
func (e *Evaluator) Update(pos *board.Position, m board.Move, captured board.Piece) {
	e.stack.Current().UpdateIncremental(pos, m, captured, e.net)
}

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() { e.stack.Reset() }

package nnue

import "github.com/hailam/chessplay-uci/internal/board"

// Accumulator holds the two perspective accumulators (White's and Black's)
// for one ply.
type Accumulator struct {
	White    [Hidden]int16
	Black    [Hidden]int16
	Computed bool
}

// ComputeFull recomputes both perspectives from the position's piece set.
func (acc *Accumulator) ComputeFull(pos *board.Position, net *Network) {
	white, black := ActiveFeatures(pos)

	copy(acc.White[:], net.FeatureBias[:])
	copy(acc.Black[:], net.FeatureBias[:])

	for _, idx := range white {
		addFeature(&acc.White, &net.FeatureWeights[idx])
	}
	for _, idx := range black {
		addFeature(&acc.Black, &net.FeatureWeights[idx])
	}
	acc.Computed = true
}

// UpdateIncremental applies the feature delta for a move just made. Falls
// back to ComputeFull when the frame has never been computed (e.g. after a
// fresh ucinewgame before the first ComputeFull call) or when
// ChangedFeatures cannot derive the delta.
func (acc *Accumulator) UpdateIncremental(pos *board.Position, m board.Move, captured board.Piece, net *Network) {
	if !acc.Computed {
		acc.ComputeFull(pos, net)
		return
	}

	whiteAdd, whiteRem, blackAdd, blackRem, ok := ChangedFeatures(pos, m, captured)
	if !ok {
		acc.ComputeFull(pos, net)
		return
	}

	for _, idx := range whiteRem {
		subFeature(&acc.White, &net.FeatureWeights[idx])
	}
	for _, idx := range whiteAdd {
		addFeature(&acc.White, &net.FeatureWeights[idx])
	}
	for _, idx := range blackRem {
		subFeature(&acc.Black, &net.FeatureWeights[idx])
	}
	for _, idx := range blackAdd {
		addFeature(&acc.Black, &net.FeatureWeights[idx])
	}
}

func addFeature(acc *[Hidden]int16, weights *[Hidden]int16) {
	for i := 0; i < Hidden; i++ {
		acc[i] += weights[i]
	}
}

func subFeature(acc *[Hidden]int16, weights *[Hidden]int16) {
	for i := 0; i < Hidden; i++ {
		acc[i] -= weights[i]
	}
}

// AccumulatorStack is a pre-allocated, ply-indexed stack of accumulator
// pairs. Push clones the current frame to ply+1 before a move is applied;
// Pop is a pure decrement, matching the board library's make/unmake
// discipline.
type AccumulatorStack struct {
	stack [maxPly + 1]Accumulator
	top   int
}

// maxPly mirrors internal/search.MaxPly. Duplicated rather than imported to
// avoid a cycle: internal/search imports internal/nnue, not the reverse.
const maxPly = 255

// NewAccumulatorStack returns an empty stack positioned at ply 0.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Push clones the current frame onto the next ply. Call before MakeMove.
func (s *AccumulatorStack) Push() {
	if s.top < len(s.stack)-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop decrements back to the previous ply. Call after UnmakeMove.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Current returns the accumulator frame for the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Reset rewinds to ply 0 and marks it uncomputed, for a new game.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = false
}

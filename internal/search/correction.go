package search

import "github.com/hailam/chessplay-uci/internal/board"

// CorrectionHistory adjusts the static evaluation based on how search
// results have historically differed from it at similar positions.
// Ground truth comes from the search itself, so this narrows the gap
// between a fast static eval and what deeper search actually finds.
type CorrectionHistory struct {
	positionCorr [65536]int16
}

// NewCorrectionHistory creates an empty correction table.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

// Get returns the correction to add to a position's static evaluation.
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	return int(ch.positionCorr[pos.Hash&0xFFFF])
}

// Update records the gap between an exact search score and the static
// eval that preceded it, via a gravity update toward the observed error.
func (ch *CorrectionHistory) Update(pos *board.Position, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}
	diff := searchScore - staticEval
	bonus := diff * depth / 8
	if bonus > 256 {
		bonus = 256
	} else if bonus < -256 {
		bonus = -256
	}

	idx := pos.Hash & 0xFFFF
	old := int(ch.positionCorr[idx])
	newVal := old + (bonus-old)/16
	if newVal > 16000 {
		newVal = 16000
	} else if newVal < -16000 {
		newVal = -16000
	}
	ch.positionCorr[idx] = int16(newVal)
}

// Clear zeroes every correction entry.
func (ch *CorrectionHistory) Clear() {
	for i := range ch.positionCorr {
		ch.positionCorr[i] = 0
	}
}

// Age halves every correction entry between games.
func (ch *CorrectionHistory) Age() {
	for i := range ch.positionCorr {
		ch.positionCorr[i] /= 2
	}
}

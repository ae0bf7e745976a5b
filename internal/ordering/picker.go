package ordering

import (
	"github.com/hailam/chessplay-uci/internal/board"
	"github.com/hailam/chessplay-uci/internal/see"
)

// stage identifies where a Picker is in its generation sequence. The
// teacher always generates, scores, and sorts every move up front; Picker
// instead only pays for the next bucket of moves once the previous one is
// exhausted, so a beta cutoff in the TT-move or good-capture stage never
// touches quiet-move generation at all.
type stage int

const (
	stagePV stage = iota
	stageCaptureInit
	stageGoodCapture
	stageQuietInit
	stageGoodQuiet
	stageBadCapture
	stageBadQuiet
	stageDone

	stageQPV
	stageQCaptureInit
	stageQGoodCapture
	stageQBadCapture
	stageQDone
)

// seeThreshold is the SEE cutoff separating "good" from "bad" captures in
// the staged generator.
const seeThreshold = -100

// historyBadThreshold separates "good" from "bad" quiets; below this a
// quiet has a long record of failing low and is tried last.
const historyBadThreshold = -500

// Picker generates and serves moves for one node, one stage at a time.
type Picker struct {
	pos      *board.Position
	mo       *Orderer
	ply      int
	ttMove   board.Move
	prevMove board.Move
	quiesce  bool

	st stage

	captures     *board.MoveList
	captureScore []int
	capIdx       int
	goodCapEnd   int

	quiets       *board.MoveList
	quietScore   []int
	quietIdx     int
	goodQuietEnd int

	ttMoveServed bool
}

// NewPicker builds a staged move picker for a normal search node.
func NewPicker(pos *board.Position, mo *Orderer, ply int, ttMove, prevMove board.Move) *Picker {
	return &Picker{pos: pos, mo: mo, ply: ply, ttMove: ttMove, prevMove: prevMove, st: stagePV}
}

// NewQPicker builds a staged picker for quiescence search: captures and
// pawn promotions only, no quiet stages, no killers.
func NewQPicker(pos *board.Position, mo *Orderer, ttMove board.Move) *Picker {
	return &Picker{pos: pos, mo: mo, ttMove: ttMove, quiesce: true, st: stageQPV}
}

// Next returns the next move to try, or (NoMove, false) once exhausted.
func (p *Picker) Next() (board.Move, bool) {
	for {
		switch p.st {
		case stagePV:
			p.st = stageCaptureInit
			if p.ttMove != board.NoMove && p.pos.PseudoLegal(p.ttMove) {
				p.ttMoveServed = true
				return p.ttMove, true
			}

		case stageCaptureInit:
			p.captures = p.pos.GenerateCaptures()
			p.captureScore = p.mo.ScoreMoves(p.pos, p.captures, p.ply, p.ttMove)
			p.partitionCaptures()
			p.st = stageGoodCapture

		case stageGoodCapture:
			if m, ok := p.nextCapture(true); ok {
				return m, true
			}
			p.st = stageQuietInit

		case stageQuietInit:
			p.quiets = generateQuiets(p.pos)
			if p.prevMove != board.NoMove {
				p.quietScore = p.mo.ScoreMovesWithCounter(p.pos, p.quiets, p.ply, p.ttMove, p.prevMove)
			} else {
				p.quietScore = p.mo.ScoreMoves(p.pos, p.quiets, p.ply, p.ttMove)
			}
			p.partitionQuiets()
			p.st = stageGoodQuiet

		case stageGoodQuiet:
			if m, ok := p.nextQuiet(true); ok {
				return m, true
			}
			p.st = stageBadCapture

		case stageBadCapture:
			if m, ok := p.nextCapture(false); ok {
				return m, true
			}
			p.st = stageBadQuiet

		case stageBadQuiet:
			if m, ok := p.nextQuiet(false); ok {
				return m, true
			}
			p.st = stageDone

		case stageDone:
			return board.NoMove, false

		case stageQPV:
			p.st = stageQCaptureInit
			if p.ttMove != board.NoMove && p.pos.PseudoLegal(p.ttMove) && p.ttMove.IsCapture(p.pos) {
				p.ttMoveServed = true
				return p.ttMove, true
			}

		case stageQCaptureInit:
			p.captures = p.pos.GenerateCaptures()
			p.captureScore = p.mo.ScoreMoves(p.pos, p.captures, 0, p.ttMove)
			p.partitionCaptures()
			p.st = stageQGoodCapture

		case stageQGoodCapture:
			if m, ok := p.nextCapture(true); ok {
				return m, true
			}
			p.st = stageQBadCapture

		case stageQBadCapture:
			if m, ok := p.nextCapture(false); ok {
				return m, true
			}
			p.st = stageQDone

		case stageQDone:
			return board.NoMove, false
		}
	}
}

// partitionCaptures splits p.captures in place into [0,goodCapEnd) good
// captures (SEE >= seeThreshold, or the TT move) and the remainder bad,
// both internally ordered by score via PickMove at serve time.
func (p *Picker) partitionCaptures() {
	n := p.captures.Len()
	end := 0
	for i := 0; i < n; i++ {
		m := p.captures.Get(i)
		if m == p.ttMove && p.ttMoveServed {
			continue
		}
		good := see.Ge(p.pos, m, seeThreshold)
		if good {
			p.captures.Swap(i, end)
			p.captureScore[i], p.captureScore[end] = p.captureScore[end], p.captureScore[i]
			end++
		}
	}
	p.goodCapEnd = end
	p.capIdx = 0
}

func (p *Picker) nextCapture(good bool) (board.Move, bool) {
	hi := p.goodCapEnd
	if !good {
		hi = p.captures.Len()
		if p.capIdx < p.goodCapEnd {
			p.capIdx = p.goodCapEnd
		}
	}
	for p.capIdx < hi {
		PickMove(p.captures, p.captureScore, p.capIdx)
		m := p.captures.Get(p.capIdx)
		p.capIdx++
		if m == p.ttMove && p.ttMoveServed {
			continue
		}
		return m, true
	}
	return board.NoMove, false
}

// partitionQuiets splits p.quiets into [0,goodQuietEnd) (history score >=
// historyBadThreshold, or a killer) and the bad remainder.
func (p *Picker) partitionQuiets() {
	n := p.quiets.Len()
	end := 0
	for i := 0; i < n; i++ {
		m := p.quiets.Get(i)
		if m == p.ttMove && p.ttMoveServed {
			continue
		}
		bad := p.mo.GetHistoryScore(m) < historyBadThreshold && !isKiller(p.mo, m, p.ply)
		if !bad {
			p.quiets.Swap(i, end)
			p.quietScore[i], p.quietScore[end] = p.quietScore[end], p.quietScore[i]
			end++
		}
	}
	p.goodQuietEnd = end
	p.quietIdx = 0
}

func (p *Picker) nextQuiet(good bool) (board.Move, bool) {
	hi := p.goodQuietEnd
	if !good {
		hi = p.quiets.Len()
		if p.quietIdx < p.goodQuietEnd {
			p.quietIdx = p.goodQuietEnd
		}
	}
	for p.quietIdx < hi {
		PickMove(p.quiets, p.quietScore, p.quietIdx)
		m := p.quiets.Get(p.quietIdx)
		p.quietIdx++
		if m == p.ttMove && p.ttMoveServed {
			continue
		}
		return m, true
	}
	return board.NoMove, false
}

func isKiller(mo *Orderer, m board.Move, ply int) bool {
	if ply >= maxPly {
		return false
	}
	return m == mo.killers[ply][0] || m == mo.killers[ply][1]
}

// generateQuiets returns the legal moves that are neither captures nor
// promotions. GenerateLegalMoves already strips moves that leave the king
// in check, matching GenerateCaptures' contract.
func generateQuiets(pos *board.Position) *board.MoveList {
	all := pos.GenerateLegalMoves()
	quiets := board.NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.IsCapture(pos) || m.IsPromotion() {
			continue
		}
		quiets.Add(m)
	}
	return quiets
}

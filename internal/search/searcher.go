// Package search implements iterative-deepening alpha-beta search: PVS with
// aspiration windows, the full suite of pruning and extension techniques,
// quiescence search, and NNUE/classical evaluation. A single Searcher runs
// on its own goroutine; unlike the teacher's Lazy-SMP worker pool this
// module runs one search thread, so there is no shared history table and
// no worker coordination to port.
package search

import (
	"github.com/hailam/chessplay-uci/internal/board"
	"github.com/hailam/chessplay-uci/internal/nnue"
	"github.com/hailam/chessplay-uci/internal/ordering"
	"github.com/hailam/chessplay-uci/internal/see"
	"github.com/hailam/chessplay-uci/internal/timer"
	"github.com/hailam/chessplay-uci/internal/tt"
)

// Info is reported to InfoHook after every completed iteration, letting
// the UCI layer print `info depth ... score ... pv ...` without this
// package knowing about UCI wire format.
type Info struct {
	Depth int
	Score int
	Nodes uint64
	PV    []board.Move
}

// Searcher owns one search's mutable state: move ordering tables,
// evaluation, transposition table handle, and the position being searched.
type Searcher struct {
	pos *board.Position

	orderer *ordering.Orderer
	tt      *tt.Table
	corr    *CorrectionHistory
	eval    *nnue.Evaluator
	pawnTT  *pawnHashTable
	timer   *timer.Timer

	nodes uint64
	pv    PVTable

	evalStack  [MaxPly]int
	stack      [MaxPly]stackFrame
	posHistory []uint64

	rootDelta int

	InfoHook func(Info)
}

// NewSearcher creates a Searcher sharing the given transposition table
// (owned by the caller, persists across searches) with a fresh evaluator
// and move-ordering state.
func NewSearcher(table *tt.Table, eval *nnue.Evaluator) *Searcher {
	return &Searcher{
		orderer: ordering.New(),
		tt:      table,
		corr:    NewCorrectionHistory(),
		eval:    eval,
		pawnTT:  newPawnHashTable(2),
		timer:   timer.New(),
	}
}

// NewGame resets everything that should not carry over between games.
func (s *Searcher) NewGame() {
	s.orderer.Clear()
	s.corr.Clear()
	s.tt.Clear()
	s.pawnTT.clear()
}

// SetRootHistory records prior game positions for repetition detection.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	s.posHistory = append(s.posHistory[:0], hashes...)
}

// Go runs iterative deepening from pos until maxDepth is reached or tm
// reports a stop, calling InfoHook after every completed iteration.
// Returns the best move found.
func (s *Searcher) Go(pos *board.Position, maxDepth int, tm *timer.Timer) board.Move {
	s.pos = pos
	s.timer = tm
	s.nodes = 0
	if s.eval != nil {
		s.eval.Reset()
		s.eval.Refresh(pos)
	}
	s.posHistory = append(s.posHistory, pos.Hash)

	s.tt.NewSearch()

	var best board.Move
	score := 0

	for depth := 1; depth <= maxDepth && depth < MaxDepth; depth++ {
		if s.timer.IsStopped() {
			break
		}

		iterScore := s.aspirationSearch(depth, score)
		if s.timer.IsStopped() && depth > 1 {
			break
		}
		score = iterScore

		if s.pv.length[0] > 0 {
			best = s.pv.moves[0][0]
		}
		if s.InfoHook != nil {
			s.InfoHook(Info{Depth: depth, Score: score, Nodes: s.nodes, PV: s.pv.Line()})
		}
		if IsDecisive(score) {
			break
		}
	}

	if best == board.NoMove {
		if moves := pos.GenerateLegalMoves(); moves.Len() > 0 {
			best = moves.Get(0)
		}
	}
	return best
}

// aspirationSearch runs negamax<Root> with a narrow window around
// prevScore, widening on fail-high/fail-low until an exact score lands.
func (s *Searcher) aspirationSearch(depth, prevScore int) int {
	if depth < 4 {
		return s.negamax(depth, 0, -Infinity, Infinity, board.NoMove, board.NoMove, false)
	}

	delta := AspirationWindow
	alpha := prevScore - delta
	beta := prevScore + delta
	if alpha < -Infinity {
		alpha = -Infinity
	}
	if beta > Infinity {
		beta = Infinity
	}
	s.rootDelta = beta - alpha

	for {
		score := s.negamax(depth, 0, alpha, beta, board.NoMove, board.NoMove, false)
		if s.timer.IsStopped() {
			return score
		}
		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = score - delta
			if alpha < -Infinity {
				alpha = -Infinity
			}
		} else if score >= beta {
			beta = score + delta
			if beta > Infinity {
				beta = Infinity
			}
		} else {
			return score
		}
		delta += delta / 2
		s.rootDelta = beta - alpha
	}
}

func (s *Searcher) evaluate() int {
	if s.eval != nil {
		return s.eval.Evaluate(s.pos)
	}
	return classicalEvaluate(s.pos, s.pawnTT)
}

func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	if s.pos.IsInsufficientMaterial() {
		return true
	}
	hash := s.pos.Hash
	count := 0
	for _, h := range s.posHistory {
		if h == hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func (s *Searcher) pushMove(m board.Move) board.UndoInfo {
	if s.eval != nil {
		s.eval.Push()
	}
	captured := board.NoPiece
	if !m.IsEnPassant() {
		captured = s.pos.PieceAt(m.To())
	} else {
		captured = board.NewPiece(board.Pawn, s.pos.SideToMove.Other())
	}
	undo := s.pos.MakeMove(m)
	if undo.Valid {
		if s.eval != nil {
			s.eval.Update(s.pos, m, captured)
		}
		s.posHistory = append(s.posHistory, s.pos.Hash)
	}
	return undo
}

func (s *Searcher) popMove(m board.Move, undo board.UndoInfo) {
	if undo.Valid {
		s.posHistory = s.posHistory[:len(s.posHistory)-1]
	}
	s.pos.UnmakeMove(m, undo)
	if s.eval != nil {
		s.eval.Pop()
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func captureValue(pos *board.Position, m board.Move) int {
	if m.IsEnPassant() {
		return board.PieceValue[board.Pawn]
	}
	v := 0
	if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
		v = board.PieceValue[captured.Type()]
	}
	if m.IsPromotion() {
		v += board.PieceValue[m.Promotion()] - board.PieceValue[board.Pawn]
	}
	return v
}

// quiescence resolves captures and check-evasions until the position is
// quiet, bounding search explosion near mate with a hard ply cap.
func (s *Searcher) quiescence(ply, qPly int, alpha, beta int) int {
	if ply >= MaxPly-1 || qPly > MaxQuiescencePly {
		return s.evaluate()
	}
	if s.timer.IsStopped() {
		return 0
	}
	s.nodes++
	originalAlpha := alpha

	var ttMove board.Move
	ttEntry, ttHit := s.tt.Probe(s.pos.Hash)
	if ttHit {
		ttMove = ttEntry.BestMove
		if ttMove != board.NoMove && !s.pos.PseudoLegal(ttMove) {
			ttMove = board.NoMove
		}
		score := adjustScoreFromTT(int(ttEntry.Score), ply)
		switch ttEntry.Bound() {
		case tt.BoundExact:
			return score
		case tt.BoundBeta:
			if score >= beta {
				return score
			}
		case tt.BoundAlpha:
			if score <= alpha {
				return score
			}
		}
	}

	inCheck := s.pos.InCheck()

	var bestValue, standPat int
	var bestMove board.Move

	if inCheck {
		bestValue = MatedIn(ply)
		standPat = bestValue
	} else {
		standPat = s.evaluate()
		bestValue = standPat
		if standPat >= beta {
			s.tt.Store(s.pos.Hash, 0, ply, standPat, standPat, tt.BoundBeta, false, board.NoMove)
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat+board.PieceValue[board.Queen] < alpha {
			return alpha
		}
	}

	var picker *ordering.Picker
	if inCheck {
		picker = ordering.NewPicker(s.pos, s.orderer, ply, ttMove, board.NoMove)
	} else {
		picker = ordering.NewQPicker(s.pos, s.orderer, ttMove)
	}

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}

		if !inCheck {
			capVal := captureValue(s.pos, m)
			if standPat+capVal+QuiescenceDeltaMargin < alpha {
				if capVal+standPat > bestValue {
					bestValue = capVal + standPat
				}
				continue
			}
			if !see.Ge(s.pos, m, QuiescenceSEEFloor) {
				continue
			}
		}

		undo := s.pushMove(m)
		if !undo.Valid {
			s.popMove(m, undo)
			continue
		}
		score := -s.quiescence(ply+1, qPly+1, -beta, -alpha)
		s.popMove(m, undo)

		if score > bestValue {
			bestValue = score
			bestMove = m
			if score > alpha {
				alpha = score
				if score >= beta {
					break
				}
			}
		}
	}

	if inCheck && bestValue == MatedIn(ply) {
		return MatedIn(ply)
	}

	var bound tt.Bound
	switch {
	case bestValue >= beta:
		bound = tt.BoundBeta
	case bestValue > originalAlpha:
		bound = tt.BoundExact
	default:
		bound = tt.BoundAlpha
	}
	s.tt.Store(s.pos.Hash, 0, ply, bestValue, standPat, bound, false, bestMove)

	return bestValue
}

// negamax searches one node. excludedMove, when set, is skipped (used by
// the singular-extension probe). cutNode marks an expected-fail-high
// non-PV node, feeding LMR's reduction scaling.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, prevMove, excludedMove board.Move, cutNode bool) int {
	if ply >= MaxPly-1 {
		return s.evaluate()
	}

	pvNode := beta-alpha > 1
	s.pv.length[ply] = ply

	if s.nodes&2047 == 0 {
		s.timer.Check()
	}
	if s.timer.IsStopped() {
		return 0
	}
	s.nodes++

	if ply > 0 && s.isDraw() {
		return 0
	}

	var ttMove board.Move
	ttPV := false
	ttEntry, ttHit := s.tt.Probe(s.pos.Hash)
	if ttHit {
		ttMove = ttEntry.BestMove
		ttPV = ttEntry.PV()
		if ttMove != board.NoMove && !s.pos.PseudoLegal(ttMove) {
			ttMove = board.NoMove
		}
		if int(ttEntry.Depth) >= depth {
			score := adjustScoreFromTT(int(ttEntry.Score), ply)
			usable := false
			switch ttEntry.Bound() {
			case tt.BoundExact:
				usable = true
			case tt.BoundAlpha:
				usable = score <= alpha
			case tt.BoundBeta:
				usable = score >= beta
			}
			if usable && excludedMove == board.NoMove {
				if ply == 0 && ttMove != board.NoMove {
					s.pv.moves[0][0] = ttMove
					s.pv.length[0] = 1
				}
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, 0, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	if depth >= 4 && ttMove == board.NoMove && !inCheck && excludedMove == board.NoMove {
		depth -= 2
	}

	extension := 0
	if inCheck {
		extension = 1
	}
	if extension == 0 && depth >= ThreatExtensionMinDepth && ply > 0 && s.detectSeriousThreats() {
		extension = 1
	}

	rawEval := s.evaluate()
	staticEval := rawEval + s.corr.Get(s.pos)
	s.evalStack[ply] = staticEval

	improving := ply >= 2 && staticEval > s.evalStack[ply-2]
	opponentWorsening := ply >= 1 && staticEval > -s.evalStack[ply-1]

	if ply >= 1 {
		priorReduction := s.stack[ply-1].reduction
		if priorReduction >= 3 && !opponentWorsening {
			depth++
		}
		if priorReduction >= 2 && depth >= 2 {
			if staticEval+s.evalStack[ply-1] > 173 {
				depth--
			}
		}
	}
	if ply+2 < MaxPly {
		s.stack[ply+2].cutoffCnt = 0
	}

	if !inCheck && depth <= StaticNullMaxDepth && ply > 0 && !ttPV {
		margin := StaticNullMarginPerDepth * depth
		if !improving {
			margin -= 20
		}
		if staticEval-margin >= beta {
			return beta
		}
	}

	if depth <= RazorMaxDepth && !inCheck && ply > 0 && !ttPV {
		razorMargin := RazorMarginPerDepth + 281*depth*depth/300
		if staticEval+razorMargin <= alpha {
			score := s.quiescence(ply, 0, alpha, beta)
			if score <= alpha {
				return score
			}
		}
	}

	if !inCheck && depth >= NMPDepthBase && ply > 0 && !ttPV && s.pos.HasNonPawnMaterial() && excludedMove == board.NoMove {
		r := NMPDepthBase + depth/NMPDepthDivisor + 4
		if r > depth-1 {
			r = depth - 1
		}
		if r >= 1 {
			undo := s.pos.MakeNullMove()
			nullScore := -s.negamax(depth-1-r, ply+1, -beta, -beta+1, board.NoMove, board.NoMove, !cutNode)
			s.pos.UnmakeNullMove(undo)
			if nullScore >= beta {
				return nullScore
			}
		}
	}

	if !inCheck && depth >= ProbcutDepthMin && ply > 0 && abs(beta) < Checkmate-100 {
		margin := ProbcutMargin
		if improving {
			margin -= 60
		}
		probcutBeta := beta + margin
		probcutDepth := depth - 4
		if probcutDepth < 1 {
			probcutDepth = 1
		}
		captures := s.pos.GenerateCaptures()
		for i := 0; i < captures.Len(); i++ {
			capture := captures.Get(i)
			if !see.Ge(s.pos, capture, 0) {
				continue
			}
			undo := s.pushMove(capture)
			if !undo.Valid {
				s.popMove(capture, undo)
				continue
			}
			score := -s.negamax(probcutDepth, ply+1, -probcutBeta, -probcutBeta+1, capture, board.NoMove, !cutNode)
			s.popMove(capture, undo)
			if score >= probcutBeta {
				return score
			}
		}
	}

	if !inCheck && depth >= MulticutDepthMin && ply > 0 && abs(beta) < Checkmate-100 {
		picker := ordering.NewPicker(s.pos, s.orderer, ply, ttMove, prevMove)
		searchDepth := depth - 4
		if searchDepth < 1 {
			searchDepth = 1
		}
		cutoffs, tried := 0, 0
		for tried < MulticutMoves {
			m, ok := picker.Next()
			if !ok {
				break
			}
			undo := s.pushMove(m)
			if !undo.Valid {
				s.popMove(m, undo)
				continue
			}
			tried++
			score := -s.negamax(searchDepth, ply+1, -beta, -beta+1, m, board.NoMove, !cutNode)
			s.popMove(m, undo)
			if score >= beta {
				cutoffs++
				if cutoffs >= MulticutRequired {
					return beta
				}
			}
		}
	}

	pruneQuiets := false
	if depth <= FutilityMaxDepth && !inCheck && ply > 0 {
		margin := FutilityMarginBase + FutilityMarginPerDepth*depth
		if staticEval+margin <= alpha {
			pruneQuiets = true
		}
	}

	singularExt := 0
	if depth >= SingularDepthMin && ttMove != board.NoMove && excludedMove == board.NoMove && ttHit {
		if int(ttEntry.Depth) >= depth-3 && (ttEntry.Bound() == tt.BoundBeta || ttEntry.Bound() == tt.BoundExact) {
			margin := SingularMarginPerDepth * depth
			if ttPV && !pvNode {
				margin += 75
			}
			ttValue := adjustScoreFromTT(int(ttEntry.Score), ply)
			singularBeta := ttValue - margin

			singularDepth := (depth - 1) / 2
			singularScore := s.negamax(singularDepth, ply, singularBeta-1, singularBeta, prevMove, ttMove, cutNode)

			if singularScore < singularBeta {
				singularExt = 1
				if singularScore < singularBeta-DoubleExtMargin {
					singularExt = 2
				}
				if singularScore < singularBeta-TripleExtMargin {
					singularExt = 3
				}
			} else if ttValue >= beta {
				singularExt = -2
			} else if cutNode {
				singularExt = -1
			}
		}
	}

	picker := ordering.NewPicker(s.pos, s.orderer, ply, ttMove, prevMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	bound := tt.BoundAlpha
	movesSearched := 0
	legalMoves := 0

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == excludedMove {
			continue
		}

		isCapture := m.IsCapture(s.pos)
		isPromotion := m.IsPromotion()

		if pruneQuiets && !isCapture && !isPromotion && bestMove != board.NoMove {
			continue
		}
		if isCapture && depth <= 7 && !inCheck && movesSearched > 0 {
			if !see.Ge(s.pos, m, -20*depth) {
				continue
			}
		}
		if depth <= 7 && !inCheck && movesSearched > 0 && !isCapture && !isPromotion && m != ttMove {
			threshold := LMPThreshold[boolIdx(improving)][minInt(depth, 8)]
			if movesSearched >= threshold {
				continue
			}
		}
		if depth <= 3 && !inCheck && movesSearched > 0 && !isCapture && !isPromotion && m != ttMove {
			if s.orderer.GetHistoryScore(m) < HistoryPruningThreshold {
				continue
			}
		}

		movingPiece := s.pos.PieceAt(m.From())
		moveTo := m.To()

		undo := s.pushMove(m)
		if !undo.Valid {
			s.popMove(m, undo)
			continue
		}
		legalMoves++
		movesSearched++

		s.stack[ply].move = m
		s.stack[ply].piece = movingPiece
		s.stack[ply].to = moveTo

		newDepth := depth - 1 + extension
		if m == ttMove && singularExt != 0 {
			newDepth += singularExt
		}

		var score int
		if movesSearched > 1 && depth >= 3 && !inCheck && !isCapture && !isPromotion {
			reduction := lmrReduction(depth, movesSearched)
			if s.rootDelta > 0 {
				reduction -= (beta - alpha) * 1300 / s.rootDelta
			}
			if !improving {
				reduction += 1024
			}
			if m == ttMove {
				reduction -= 2048
			}
			if ttPV {
				reduction -= 1024
			}
			if cutNode {
				extra := 3372
				if ttMove == board.NoMove {
					extra += 997
				}
				reduction += extra
			}
			if ply+1 < MaxPly {
				cutoffCnt := s.stack[ply+1].cutoffCnt
				if cutoffCnt > 1 {
					reduction += 120
				}
			}

			histScore := s.orderer.GetHistoryScore(m)
			var contHist0, contHist1 int
			if ply >= 1 {
				contHist0 = s.orderer.GetCountermoveHistoryScore(s.stack[ply-1].move, s.stack[ply-1].piece, movingPiece, moveTo)
			}
			if ply >= 2 {
				contHist1 = s.orderer.GetCountermoveHistoryScore(s.stack[ply-2].move, s.stack[ply-2].piece, movingPiece, moveTo)
			}
			statScore := 2*histScore + contHist0 + contHist1
			reduction -= statScore * 850 / 8192 * 1024
			reduction -= movesSearched * 73

			reductionPlies := reduction / 1024
			if reductionPlies < 1 {
				reductionPlies = 1
			}
			s.stack[ply].reduction = reductionPlies

			reducedDepth := newDepth - reductionPlies
			if reducedDepth < 1 {
				reducedDepth = 1
			}
			score = -s.negamax(reducedDepth, ply+1, -alpha-1, -alpha, m, board.NoMove, true)
			if score > alpha {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, m, board.NoMove, false)
			}
		} else if movesSearched == 1 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha, m, board.NoMove, false)
		} else {
			score = -s.negamax(newDepth, ply+1, -alpha-1, -alpha, m, board.NoMove, !cutNode)
			if score > alpha && score < beta {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, m, board.NoMove, false)
			}
		}

		s.popMove(m, undo)

		if s.timer.IsStopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				bound = tt.BoundExact
				s.pv.moves[ply][ply] = m
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			if extension < 2 || pvNode {
				s.stack[ply].cutoffCnt++
			}
			if ply == 0 {
				s.pv.moves[0][0] = bestMove
				s.pv.length[0] = 1
			}
			s.tt.Store(s.pos.Hash, depth, ply, score, staticEval, tt.BoundBeta, pvNode, bestMove)

			if isCapture {
				attacker := s.pos.PieceAt(m.From())
				capturedType := capturedPieceType(s.pos, m)
				s.orderer.UpdateCaptureHistory(attacker, m.To(), capturedType, depth, true)
			} else {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(m, depth, true)
				s.orderer.UpdateCounterMove(prevMove, m, s.pos)
				if prevMove != board.NoMove {
					s.orderer.UpdateCountermoveHistory(prevMove, m, s.pos.PieceAt(prevMove.To()), movingPiece, depth, true)
				}
			}
			return score
		}
	}

	if legalMoves == 0 {
		if excludedMove != board.NoMove {
			return alpha
		}
		if inCheck {
			return MatedIn(ply)
		}
		return 0
	}

	if bound == tt.BoundExact && !inCheck && depth >= 2 {
		s.corr.Update(s.pos, bestScore, rawEval, depth)
	}
	s.tt.Store(s.pos.Hash, depth, ply, bestScore, staticEval, bound, pvNode, bestMove)

	return bestScore
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func capturedPieceType(pos *board.Position, m board.Move) board.PieceType {
	if m.IsEnPassant() {
		return board.Pawn
	}
	p := pos.PieceAt(m.To())
	if p == board.NoPiece {
		return board.Pawn
	}
	return p.Type()
}

func adjustScoreFromTT(score, ply int) int {
	if score > Checkmate-MaxPly {
		return score - ply
	}
	if score < -Checkmate+MaxPly {
		return score + ply
	}
	return score
}

// pieceAttacks breaks down every square c's pieces of one type attack,
// by type, so callers can ask "attacked by anything cheaper than a rook".
type pieceAttacks struct {
	pawn, knight, bishop, rook, queen, king board.Bitboard
}

func attacksByType(pos *board.Position, c board.Color) pieceAttacks {
	var a pieceAttacks
	occupied := pos.AllOccupied

	pawns := pos.Pieces[c][board.Pawn]
	for pawns != 0 {
		a.pawn |= board.PawnAttacks(pawns.PopLSB(), c)
	}
	knights := pos.Pieces[c][board.Knight]
	for knights != 0 {
		a.knight |= board.KnightAttacks(knights.PopLSB())
	}
	bishops := pos.Pieces[c][board.Bishop]
	for bishops != 0 {
		a.bishop |= board.BishopAttacks(bishops.PopLSB(), occupied)
	}
	rooks := pos.Pieces[c][board.Rook]
	for rooks != 0 {
		a.rook |= board.RookAttacks(rooks.PopLSB(), occupied)
	}
	queens := pos.Pieces[c][board.Queen]
	for queens != 0 {
		a.queen |= board.QueenAttacks(queens.PopLSB(), occupied)
	}
	a.king = board.KingAttacks(pos.KingSquare[c])
	return a
}

func (a pieceAttacks) all() board.Bitboard {
	return a.pawn | a.knight | a.bishop | a.rook | a.queen | a.king
}

// detectSeriousThreats checks whether the opponent threatens to win
// material next move: a hanging piece of ours worth a rook or more, or a
// queen/rook attacked by a cheaper enemy piece.
func (s *Searcher) detectSeriousThreats() bool {
	pos := s.pos
	us := pos.SideToMove
	them := us.Other()

	enemy := attacksByType(pos, them)
	ourDefenses := attacksByType(pos, us).all()
	enemyAll := enemy.all()

	ourPieces := pos.Occupied[us] &^ board.SquareBB(pos.KingSquare[us])
	hanging := ourPieces & enemyAll &^ ourDefenses

	for hanging != 0 {
		sq := hanging.PopLSB()
		if piece := pos.PieceAt(sq); piece != board.NoPiece && board.PieceValue[piece.Type()] >= board.PieceValue[board.Rook] {
			return true
		}
	}

	if pos.Pieces[us][board.Queen]&enemyAll != 0 {
		return true
	}
	lesserThanRook := enemy.pawn | enemy.knight | enemy.bishop
	if pos.Pieces[us][board.Rook]&lesserThanRook != 0 {
		return true
	}
	return false
}

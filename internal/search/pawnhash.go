package search

import "github.com/hailam/chessplay-uci/internal/board"

// pawnEntry caches one side-to-move-independent pawn structure score.
type pawnEntry struct {
	key     uint64
	mgScore int16
	egScore int16
}

// pawnHashTable caches doubled/isolated/passed-pawn scoring, keyed on
// board.Position.PawnKey (a hash of the pawns only, which MakeMove
// refreshes whenever a pawn moves or is captured). Only classicalEvaluate consults it: the NNUE evaluator
// folds pawn structure into its own feature weights and needs no cache.
type pawnHashTable struct {
	entries []pawnEntry
	mask    uint64
}

// newPawnHashTable builds a table sized to the nearest power of two
// entries fitting in sizeMB megabytes.
func newPawnHashTable(sizeMB int) *pawnHashTable {
	const entrySize = 16 // padded struct size in the backing slice
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}
	if size < 1 {
		size = 1
	}

	return &pawnHashTable{
		entries: make([]pawnEntry, size),
		mask:    uint64(size - 1),
	}
}

func (pt *pawnHashTable) probe(key uint64) (mg, eg int, found bool) {
	e := &pt.entries[key&pt.mask]
	if e.key == key {
		return int(e.mgScore), int(e.egScore), true
	}
	return 0, 0, false
}

func (pt *pawnHashTable) store(key uint64, mg, eg int) {
	e := &pt.entries[key&pt.mask]
	e.key = key
	e.mgScore = int16(mg)
	e.egScore = int16(eg)
}

func (pt *pawnHashTable) clear() {
	for i := range pt.entries {
		pt.entries[i] = pawnEntry{}
	}
}

var (
	doubledPawnMgPenalty  = -15
	doubledPawnEgPenalty  = -20
	isolatedPawnMgPenalty = -20
	isolatedPawnEgPenalty = -25
	passedPawnBonus       = [8]int{0, 10, 20, 40, 70, 120, 200, 0}
)

// pawnStructureScore computes the doubled/isolated/passed-pawn
// middlegame and endgame scores from White's perspective, consulting
// pt first when non-nil.
func pawnStructureScore(pos *board.Position, pt *pawnHashTable) (mg, eg int) {
	if pt != nil {
		if cachedMg, cachedEg, ok := pt.probe(pos.PawnKey); ok {
			return cachedMg, cachedEg
		}
	}

	whitePawns := pos.Pieces[board.White][board.Pawn]
	blackPawns := pos.Pieces[board.Black][board.Pawn]

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		ownPawns := whitePawns
		enemyPawns := blackPawns
		if c == board.Black {
			sign = -1
			ownPawns, enemyPawns = blackPawns, whitePawns
		}

		var fileCounts [8]int
		bb := ownPawns
		for bb != 0 {
			sq := bb.PopLSB()
			fileCounts[sq.File()]++
		}

		bb = ownPawns
		for bb != 0 {
			sq := bb.PopLSB()
			file := sq.File()
			rank := sq.Rank()

			if fileCounts[file] > 1 {
				mg += sign * doubledPawnMgPenalty
				eg += sign * doubledPawnEgPenalty
			}

			isolated := true
			if file > 0 && fileCounts[file-1] > 0 {
				isolated = false
			}
			if file < 7 && fileCounts[file+1] > 0 {
				isolated = false
			}
			if isolated {
				mg += sign * isolatedPawnMgPenalty
				eg += sign * isolatedPawnEgPenalty
			}

			if isPassedPawn(sq, file, rank, c, enemyPawns) {
				relRank := rank
				if c == board.Black {
					relRank = 7 - rank
				}
				bonus := passedPawnBonus[relRank]
				mg += sign * bonus
				eg += sign * (bonus * 3 / 2)
			}
		}
	}

	if pt != nil {
		pt.store(pos.PawnKey, mg, eg)
	}
	return mg, eg
}

// isPassedPawn reports whether no enemy pawn on file-1..file+1 sits on
// or ahead of sq's rank, from c's direction of advance.
func isPassedPawn(sq board.Square, file, rank int, c board.Color, enemyPawns board.Bitboard) bool {
	bb := enemyPawns
	for bb != 0 {
		esq := bb.PopLSB()
		ef := esq.File()
		if ef < file-1 || ef > file+1 {
			continue
		}
		er := esq.Rank()
		if c == board.White && er > rank {
			return false
		}
		if c == board.Black && er < rank {
			return false
		}
	}
	return true
}

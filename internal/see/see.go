// Package see implements Static Exchange Evaluation: estimating the net
// material result of a capture sequence on a single square, assuming both
// sides play the rationally best recapture.
package see

import "github.com/hailam/chessplay-uci/internal/board"

// Piece values used by the swap algorithm. Promotion substitutes the
// promoted piece's value for the pawn's on the promotion rank.
var pieceValue = [7]int{100, 320, 330, 600, 900, 20000, 0}

// Ge reports whether the capture sequence initiated by m nets at least
// threshold centipawns for the side to move, assuming rational defence.
// For a non-capturing, non-promoting move the sequence never starts, so
// Ge reduces to threshold <= 0.
func Ge(pos *board.Position, m board.Move, threshold int) bool {
	return swap(pos, m) >= threshold
}

// swap runs the gain-array negamax exchange and returns the net material
// result from the mover's perspective. It never mutates pos: the exchange
// is simulated over a local copy of the occupancy bitboard only, so there
// is nothing to restore on any exit path.
func swap(pos *board.Position, m board.Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var gain0 int
	if m.IsEnPassant() {
		gain0 = pieceValue[board.Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0
		}
		gain0 = pieceValue[victim.Type()]
	}
	if m.IsPromotion() {
		gain0 += pieceValue[m.Promotion()] - pieceValue[board.Pawn]
	}

	var gain [32]int
	d := 0
	gain[d] = gain0

	occupied := pos.AllOccupied &^ board.SquareBB(from)
	if m.IsEnPassant() {
		captureSq := epCapturedSquare(pos, to)
		occupied &^= board.SquareBB(captureSq)
	}

	pinnedWhite := pinnedFor(pos, board.White)
	pinnedBlack := pinnedFor(pos, board.Black)

	attackerValue := pieceValue[attacker.Type()]
	side := attacker.Color().Other()

	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		pinned := pinnedWhite
		if side == board.Black {
			pinned = pinnedBlack
		}
		sq, piece := leastValuableAttacker(pos, to, side, occupied, pinned)
		if sq == board.NoSquare {
			break
		}

		occupied &^= board.SquareBB(sq)
		attackerValue = pieceValue[piece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

func epCapturedSquare(pos *board.Position, to board.Square) board.Square {
	if pos.SideToMove == board.White {
		return board.NewSquare(to.File(), to.Rank()-1)
	}
	return board.NewSquare(to.File(), to.Rank()+1)
}

// pinnedFor returns the bitboard of color's own pieces pinned to color's
// king by an enemy sliding piece. Generalizes Position.ComputePinned
// (which only computes pins for the side to move) to an arbitrary color,
// since SEE needs pin information for both sides during the exchange.
func pinnedFor(pos *board.Position, color board.Color) board.Bitboard {
	them := color.Other()
	ksq := pos.KingSquare[color]
	var pinned board.Bitboard

	snipers := board.RookAttacks(ksq, 0) & (pos.Pieces[them][board.Rook] | pos.Pieces[them][board.Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := board.Between(sq, ksq) & pos.AllOccupied
		if blockers.PopCount() == 1 && blockers&pos.Occupied[color] != 0 {
			pinned |= blockers
		}
	}

	snipers = board.BishopAttacks(ksq, 0) & (pos.Pieces[them][board.Bishop] | pos.Pieces[them][board.Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := board.Between(sq, ksq) & pos.AllOccupied
		if blockers.PopCount() == 1 && blockers&pos.Occupied[color] != 0 {
			pinned |= blockers
		}
	}

	return pinned
}

// leastValuableAttacker finds side's cheapest piece attacking target given
// occupied, excluding pieces in pinned (a pinned piece can't safely leave
// the king's line to recapture).
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied, pinned board.Bitboard) (board.Square, board.Piece) {
	pawns := pos.Pieces[side][board.Pawn] &^ pinned
	if attackers := pawns & board.PawnAttacks(target, side.Other()) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Pawn, side)
	}

	knights := pos.Pieces[side][board.Knight] &^ pinned
	if attackers := knights & board.KnightAttacks(target) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Knight, side)
	}

	bishopAttacks := board.BishopAttacks(target, occupied)
	bishops := pos.Pieces[side][board.Bishop] &^ pinned
	if attackers := bishops & bishopAttacks & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Bishop, side)
	}

	rookAttacks := board.RookAttacks(target, occupied)
	rooks := pos.Pieces[side][board.Rook] &^ pinned
	if attackers := rooks & rookAttacks & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Rook, side)
	}

	queens := pos.Pieces[side][board.Queen] &^ pinned
	if attackers := queens & (bishopAttacks | rookAttacks) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Queen, side)
	}

	kingBB := pos.Pieces[side][board.King]
	if attackers := kingBB & board.KingAttacks(target) & occupied; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

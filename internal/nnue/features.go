package nnue

import "github.com/hailam/chessplay-uci/internal/board"

// FeatureIndex computes the flat (perspective, piece, square) feature index
// for a piece. perspective is the accumulator we're updating (White or
// Black); for the Black perspective every square is mirrored vertically and
// every pieceColor is flipped, so both perspectives see their own pieces as
// "white" pieces on the same ranks, the same way the teacher's HalfKP
// indexing did, generalized here without any king-square term.
func FeatureIndex(perspective board.Color, pieceType board.PieceType, pieceColor board.Color, pieceSquare board.Square) int {
	sq := int(pieceSquare)
	pc := pieceColor
	if perspective == board.Black {
		sq = int(pieceSquare.Mirror())
		pc = pieceColor.Other()
	}
	colorOffset := 0
	if pc == board.Black {
		colorOffset = NumPieceTypes * NumSquares
	}
	return colorOffset + int(pieceType)*NumSquares + sq
}

// ActiveFeatures returns the active feature indices for both perspectives.
func ActiveFeatures(pos *board.Position) (white, black []int) {
	white = make([]int, 0, 32)
	black = make([]int, 0, 32)

	for color := board.White; color <= board.Black; color++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			pieces := pos.Pieces[color][pt]
			for pieces != 0 {
				sq := pieces.PopLSB()
				white = append(white, FeatureIndex(board.White, pt, color, sq))
				black = append(black, FeatureIndex(board.Black, pt, color, sq))
			}
		}
	}
	return white, black
}

// ChangedFeatures returns the add/remove feature deltas for both
// perspectives caused by a move just made on pos (pos already reflects the
// post-move state; captured is the piece that occupied m.To() before the
// move, NoPiece if none). Since this feature map has no king-relative
// indexing, every move type — including castling and king moves — is
// representable as a handful of add/remove deltas; there is no case that
// forces a full recompute.
func ChangedFeatures(pos *board.Position, m board.Move, captured board.Piece) (whiteAdd, whiteRem, blackAdd, blackRem []int, ok bool) {
	from := m.From()
	to := m.To()
	moved := pos.PieceAt(to)
	if moved == board.NoPiece {
		return nil, nil, nil, nil, false
	}
	movingColor := moved.Color()
	movingPT := moved.Type()
	// For promotions the piece at `to` is already the promoted piece; the
	// feature that must be removed at `from` is the original pawn.
	fromPT := movingPT
	if m.IsPromotion() {
		fromPT = board.Pawn
	}

	whiteRem = append(whiteRem, FeatureIndex(board.White, fromPT, movingColor, from))
	blackRem = append(blackRem, FeatureIndex(board.Black, fromPT, movingColor, from))
	whiteAdd = append(whiteAdd, FeatureIndex(board.White, movingPT, movingColor, to))
	blackAdd = append(blackAdd, FeatureIndex(board.Black, movingPT, movingColor, to))

	if captured != board.NoPiece && captured.Type() != board.King {
		capturedSq := to
		if m.IsEnPassant() {
			if movingColor == board.White {
				capturedSq = board.NewSquare(to.File(), to.Rank()-1)
			} else {
				capturedSq = board.NewSquare(to.File(), to.Rank()+1)
			}
		}
		whiteRem = append(whiteRem, FeatureIndex(board.White, captured.Type(), captured.Color(), capturedSq))
		blackRem = append(blackRem, FeatureIndex(board.Black, captured.Type(), captured.Color(), capturedSq))
	}

	if m.IsCastling() {
		rank := from.Rank()
		var rookFrom, rookTo board.Square
		if to > from {
			rookFrom = board.NewSquare(7, rank)
			rookTo = board.NewSquare(5, rank)
		} else {
			rookFrom = board.NewSquare(0, rank)
			rookTo = board.NewSquare(3, rank)
		}
		whiteRem = append(whiteRem, FeatureIndex(board.White, board.Rook, movingColor, rookFrom))
		blackRem = append(blackRem, FeatureIndex(board.Black, board.Rook, movingColor, rookFrom))
		whiteAdd = append(whiteAdd, FeatureIndex(board.White, board.Rook, movingColor, rookTo))
		blackAdd = append(blackAdd, FeatureIndex(board.Black, board.Rook, movingColor, rookTo))
	}

	return whiteAdd, whiteRem, blackAdd, blackRem, true
}

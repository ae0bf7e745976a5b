package search

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
	"github.com/hailam/chessplay-uci/internal/timer"
	"github.com/hailam/chessplay-uci/internal/tt"
)

func newTestSearcher() *Searcher {
	return NewSearcher(tt.New(1), nil)
}

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestSearcherFindsMateInOne(t *testing.T) {
	s := newTestSearcher()
	pos := mustFEN(t, "6k1/8/6K1/8/8/8/8/R7 w - - 0 1")
	tm := timer.New()
	tm.Start(2000)

	best := s.Go(pos, 6, tm)
	if best == board.NoMove {
		t.Fatal("expected a move, got NoMove")
	}

	undo := pos.MakeMove(best)
	if !undo.Valid {
		t.Fatalf("search returned an illegal move: %v", best)
	}
	if !pos.InCheck() {
		t.Fatalf("expected mating move to give check, move=%v", best)
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Fatalf("expected no legal replies after mating move, got %d", pos.GenerateLegalMoves().Len())
	}
}

func TestSearcherAvoidsStalemate(t *testing.T) {
	s := newTestSearcher()
	// White to move, must not play a move that stalemates black's king.
	pos := mustFEN(t, "7k/8/6KQ/8/8/8/8/8 w - - 0 1")
	tm := timer.New()
	tm.Start(2000)

	best := s.Go(pos, 5, tm)
	undo := pos.MakeMove(best)
	if !undo.Valid {
		t.Fatalf("search returned an illegal move: %v", best)
	}
	if pos.GenerateLegalMoves().Len() == 0 && !pos.InCheck() {
		t.Fatalf("search produced stalemate instead of progressing toward mate")
	}
}

func TestSearcherStopsAtTimeLimit(t *testing.T) {
	s := newTestSearcher()
	pos := mustFEN(t, "r1bqkbnr/pppppppp/2n5/8/8/2N5/PPPPPPPP/R1BQKBNR w KQkq - 0 1")
	tm := timer.New()
	tm.Start(50)

	best := s.Go(pos, MaxDepth-1, tm)
	if best == board.NoMove {
		t.Fatal("expected a move even when the clock runs out")
	}
}

func TestQuiescenceStandPatBoundsNegamax(t *testing.T) {
	s := newTestSearcher()
	s.pos = mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	s.timer = timer.New()
	s.timer.Start(1000)
	s.posHistory = []uint64{s.pos.Hash}

	score := s.quiescence(0, 0, -Infinity, Infinity)
	if score < -100 || score > 100 {
		t.Fatalf("expected near-zero score for a bare-kings draw-ish position, got %d", score)
	}
}

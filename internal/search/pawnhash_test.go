package search

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

func TestPawnHashTableCachesAcrossProbes(t *testing.T) {
	pt := newPawnHashTable(1)
	pos, err := board.ParseFEN("rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	mg1, eg1 := pawnStructureScore(pos, pt)
	mg2, eg2 := pawnStructureScore(pos, pt)
	if mg1 != mg2 || eg1 != eg2 {
		t.Fatalf("cached pawn score changed: (%d,%d) vs (%d,%d)", mg1, eg1, mg2, eg2)
	}

	if cachedMg, cachedEg, ok := pt.probe(pos.PawnKey); !ok || cachedMg != mg1 || cachedEg != eg1 {
		t.Fatalf("expected a populated cache entry matching the computed score")
	}
}

func TestDoubledPawnsArePenalized(t *testing.T) {
	doubled, err := board.ParseFEN("4k3/8/8/8/4P3/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	healthy, err := board.ParseFEN("4k3/8/8/8/3P4/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	doubledMg, _ := pawnStructureScore(doubled, nil)
	healthyMg, _ := pawnStructureScore(healthy, nil)
	if doubledMg >= healthyMg {
		t.Fatalf("expected doubled pawns to score worse than split pawns: doubled=%d healthy=%d", doubledMg, healthyMg)
	}
}

func TestPassedPawnClosingOnPromotionScoresHigher(t *testing.T) {
	early, err := board.ParseFEN("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	advanced, err := board.ParseFEN("4k3/8/4P3/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	earlyMg, _ := pawnStructureScore(early, nil)
	advancedMg, _ := pawnStructureScore(advanced, nil)
	if advancedMg <= earlyMg {
		t.Fatalf("expected a further-advanced passed pawn to score higher: early=%d advanced=%d", earlyMg, advancedMg)
	}
}

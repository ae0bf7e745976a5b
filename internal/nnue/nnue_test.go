package nnue

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestEvaluateBoundedBelowMateScore(t *testing.T) {
	e := newTestEvaluator(t)
	pos := board.NewPosition()
	score := e.Evaluate(pos)
	if score > NNUEMax || score < -NNUEMax {
		t.Fatalf("evaluate out of bounds: %d (limit %d)", score, NNUEMax)
	}
}

// initialize(P); evaluate() must equal initialize(P0); make all moves to P; evaluate().
func TestIncrementalMatchesFullRecompute(t *testing.T) {
	e := newTestEvaluator(t)

	pos := board.NewPosition()
	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6"}

	for _, ms := range moves {
		m, err := board.ParseMove(ms, pos)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", ms, err)
		}
		captured := pos.PieceAt(m.To())
		if m.IsEnPassant() {
			captured = board.NewPiece(board.Pawn, pos.SideToMove.Other())
		}
		e.Push()
		pos.MakeMove(m)
		e.Update(pos, m, captured)
	}

	incremental := e.Evaluate(pos)

	fresh, err := NewEvaluator("")
	if err != nil {
		t.Fatal(err)
	}
	fresh.net = e.net // same weights
	fresh.Refresh(pos)
	full := fresh.Evaluate(pos)

	if incremental != full {
		t.Fatalf("incremental eval %d != full recompute %d", incremental, full)
	}
}

func TestBucketSelection(t *testing.T) {
	cases := []struct {
		pieces int
		want   int
	}{
		{32, 7}, {2, 0}, {5, 0}, {6, 1}, {30, 7}, {1, 0},
	}
	for _, c := range cases {
		if got := Bucket(c.pieces); got != c.want {
			t.Errorf("Bucket(%d) = %d, want %d", c.pieces, got, c.want)
		}
	}
}

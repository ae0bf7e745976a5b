package see

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// A quiet move never starts an exchange, so Ge(move, t) must equal t <= 0.
func TestGeQuietMoveSymmetry(t *testing.T) {
	pos := mustFEN(t, board.StartFEN)
	m := board.NewMove(board.E2, board.E4)
	for _, threshold := range []int{-200, -1, 0, 1, 200} {
		got := Ge(pos, m, threshold)
		want := threshold <= 0
		if got != want {
			t.Errorf("Ge(quiet, %d) = %v, want %v", threshold, got, want)
		}
	}
}

func TestGeWinningCaptureExceedsZero(t *testing.T) {
	// White rook takes undefended black knight.
	pos := mustFEN(t, "4k3/8/8/3n4/3R4/8/8/4K3 w - - 0 1")
	m, err := board.ParseMove("d4d5", pos)
	if err != nil {
		t.Fatal(err)
	}
	if !Ge(pos, m, 1) {
		t.Fatal("expected winning an undefended knight with a rook to be SEE >= 1")
	}
}

func TestGeLosingCaptureBelowZero(t *testing.T) {
	// White queen takes a pawn defended by a knight.
	pos := mustFEN(t, "4k3/8/1n6/3p4/8/8/3Q4/4K3 w - - 0 1")
	m, err := board.ParseMove("d2d5", pos)
	if err != nil {
		t.Fatal(err)
	}
	if Ge(pos, m, 0) {
		t.Fatal("expected queen-for-pawn-then-recaptured to be SEE < 0")
	}
}

func TestGeDoesNotMutatePosition(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3n4/3R4/8/8/4K3 w - - 0 1")
	before := pos.Hash
	beforeOcc := pos.AllOccupied
	m, _ := board.ParseMove("d4d5", pos)
	Ge(pos, m, 0)
	if pos.Hash != before || pos.AllOccupied != beforeOcc {
		t.Fatal("SEE mutated the position")
	}
}

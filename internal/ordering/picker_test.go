package ordering

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

func TestPickerServesTTMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	mo := New()
	tt := board.NewMove(board.E2, board.E4)

	p := NewPicker(pos, mo, 0, tt, board.NoMove)
	m, ok := p.Next()
	if !ok || m != tt {
		t.Fatalf("expected TT move first, got %v ok=%v", m, ok)
	}
}

func TestPickerExhaustsAllLegalMovesExactlyOnce(t *testing.T) {
	pos := board.NewPosition()
	mo := New()
	legal := pos.GenerateLegalMoves()

	p := NewPicker(pos, mo, 0, board.NoMove, board.NoMove)
	seen := make(map[board.Move]bool)
	for {
		m, ok := p.Next()
		if !ok {
			break
		}
		if seen[m] {
			t.Fatalf("move %v served twice", m)
		}
		seen[m] = true
	}
	if len(seen) != legal.Len() {
		t.Fatalf("picker served %d moves, position has %d legal moves", len(seen), legal.Len())
	}
}

func TestPickerGoodCapturesPrecedeBadCaptures(t *testing.T) {
	// A position where White can play Qxe5 (losing the queen to the c6
	// knight's recapture) and also Nxe5 (a good capture, backed by the
	// queen): the good capture must be served first.
	pos, err := board.ParseFEN("4k3/8/2n5/4p3/8/5N2/4Q3/6K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	mo := New()
	p := NewPicker(pos, mo, 0, board.NoMove, board.NoMove)

	var order []board.Move
	for {
		m, ok := p.Next()
		if !ok {
			break
		}
		if m.IsCapture(pos) {
			order = append(order, m)
		}
	}
	if len(order) < 2 {
		t.Fatalf("expected at least 2 captures, got %d", len(order))
	}
	nxe5 := board.NewMove(board.F3, board.E5)
	qxe5 := board.NewMove(board.E2, board.E5)
	nIdx, qIdx := -1, -1
	for i, m := range order {
		if m == nxe5 {
			nIdx = i
		}
		if m == qxe5 {
			qIdx = i
		}
	}
	if nIdx == -1 || qIdx == -1 {
		t.Fatalf("expected both Nxe5 and Qxe5 in capture order: %v", order)
	}
	if nIdx > qIdx {
		t.Fatalf("good capture Nxe5 (idx %d) should precede losing Qxe5 (idx %d)", nIdx, qIdx)
	}
}

func TestQPickerOnlyServesCaptures(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/4p3/8/8/4Q3/3N2K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	mo := New()
	p := NewQPicker(pos, mo, board.NoMove)
	for {
		m, ok := p.Next()
		if !ok {
			break
		}
		if !m.IsCapture(pos) {
			t.Fatalf("quiescence picker served a non-capture: %v", m)
		}
	}
}

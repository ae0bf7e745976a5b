package tt

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenPersistentStore(dir)
	if err != nil {
		t.Fatalf("OpenPersistentStore: %v", err)
	}
	defer store.Close()

	table := New(1)
	hash := uint64(0x1234)
	table.Store(hash, 12, 0, 77, 5, BoundExact, true, board.NewMove(board.D2, board.D4))

	if err := store.Checkpoint(table); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	fresh := New(1)
	if err := store.WarmStart(fresh); err != nil {
		t.Fatalf("WarmStart: %v", err)
	}

	res := fresh.Get(hash, 0, 12, -1000, 1000)
	if !res.Hit || !res.ScoreValid || res.Score != 77 {
		t.Fatalf("warm-started entry mismatch: %+v", res)
	}
}

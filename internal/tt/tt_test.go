package tt

import (
	"testing"

	"github.com/hailam/chessplay-uci/internal/board"
)

// for any hash h, ply p, depth d, move m, score s, flag f: after store,
// get(h, p, d, alpha, beta) returns a hit; with EXACT flag the returned
// score equals s (within mate normalisation).
func TestRoundTripExact(t *testing.T) {
	table := New(1)
	hash := uint64(0xDEADBEEFCAFEBABE)
	m := board.NewMove(board.E2, board.E4)

	table.Store(hash, 10, 3, 250, 10, BoundExact, false, m)

	res := table.Get(hash, 3, 10, -1000, 1000)
	if !res.Hit {
		t.Fatal("expected a hit after store")
	}
	if !res.ScoreValid {
		t.Fatal("EXACT bound should always be usable")
	}
	if res.Score != 250 {
		t.Fatalf("score = %d, want 250", res.Score)
	}
	if res.BestMove != m {
		t.Fatalf("best move = %v, want %v", res.BestMove, m)
	}
}

func TestBoundHonoursWindow(t *testing.T) {
	table := New(1)
	hash := uint64(123456789)

	table.Store(hash, 5, 0, 100, 100, BoundAlpha, false, board.NoMove)
	if res := table.Get(hash, 0, 5, 200, 300); !res.ScoreValid {
		t.Fatal("ALPHA bound should be usable when score(100) <= alpha(200)")
	}
	if res := table.Get(hash, 0, 5, 50, 300); res.ScoreValid {
		t.Fatal("ALPHA bound should not be usable when score(100) > alpha(50)")
	}

	table.Store(uint64(987654321), 5, 0, 400, 400, BoundBeta, false, board.NoMove)
	if res := table.Get(987654321, 0, 5, 0, 500); res.ScoreValid {
		t.Fatal("BETA bound should not be usable when score(400) < beta(500)")
	}
	if res := table.Get(987654321, 0, 5, 0, 300); !res.ScoreValid {
		t.Fatal("BETA bound should be usable when score(400) >= beta(300)")
	}
}

func TestMateScorePlyAdjustment(t *testing.T) {
	table := New(1)
	hash := uint64(42)
	mateScoreAtPly5 := mateScore - 3 // a mate found 3 ply from this node

	table.Store(hash, 20, 5, mateScoreAtPly5, 0, BoundExact, false, board.NoMove)
	res := table.Get(hash, 5, 20, -60000, 60000)
	if res.Score != mateScoreAtPly5 {
		t.Fatalf("mate score round trip: got %d, want %d", res.Score, mateScoreAtPly5)
	}

	// Probing from a different ply must NOT see the same relative score,
	// since the table stores the absolute, root-relative distance.
	res2 := table.Get(hash, 2, 20, -60000, 60000)
	if res2.Score == res.Score {
		t.Fatal("mate score should be re-adjusted relative to the probing ply")
	}
}

func TestBucketMRUPromotion(t *testing.T) {
	table := New(1)
	var hashes [4]uint64

	// Force 4 distinct entries into the same bucket by using hash values
	// that share the low bits (the bucket index) but differ in full value.
	for i := 0; i < 4; i++ {
		hashes[i] = uint64(i)<<40 | 7
	}
	for i, h := range hashes {
		table.Store(h, i+1, 0, i*10, 0, BoundExact, false, board.NoMove)
	}

	// Probing the first-stored hash should promote it to slot 0.
	if _, hit := table.Probe(hashes[0]); !hit {
		t.Fatal("expected hashes[0] still resident in the bucket")
	}
	b := table.bucketFor(hashes[0])
	if b.entries[0].Key != hashes[0] {
		t.Fatal("probe hit did not promote to slot 0 (MRU)")
	}
}

func TestClearResetsAgeToOne(t *testing.T) {
	table := New(1)
	table.NewSearch()
	table.NewSearch()
	table.Clear()
	if table.age != 1 {
		t.Fatalf("age after Clear = %d, want 1", table.age)
	}
	if table.Occupied() != 0 {
		t.Fatal("freshly cleared table should report 0 occupancy")
	}
}

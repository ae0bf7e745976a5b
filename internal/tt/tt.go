// Package tt implements the search's transposition table: a bucketed,
// aging, fixed-memory cache of previously searched positions.
package tt

import "github.com/hailam/chessplay-uci/internal/board"

// Bound flags for the score stored in an entry.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundAlpha       // upper bound (failed low)
	BoundBeta        // lower bound (failed high / beta cutoff)
	BoundExact
)

const (
	mateScore = 50000
	maxPly    = 255
)

// Entry is one transposition table record. Go gives no portable way to pin
// struct layout to a literal 128-byte cache line without unsafe (the
// teacher doesn't attempt this either); the meta byte packs bound/pv/age as
// explicit bit operations rather than language bit-field syntax so the
// encoding itself stays portable, per the layout note this module follows.
type Entry struct {
	Key        uint64
	BestMove   board.Move
	Score      int16
	StaticEval int16
	Depth      int8
	meta       uint8 // bound:2 | pv:1 | age:5
}

func (e Entry) Bound() Bound { return Bound(e.meta & 0x3) }
func (e Entry) PV() bool     { return e.meta&0x4 != 0 }
func (e Entry) Age() uint8   { return e.meta >> 3 }

func packMeta(b Bound, pv bool, age uint8) uint8 {
	m := uint8(b) & 0x3
	if pv {
		m |= 0x4
	}
	m |= (age & 0x1F) << 3
	return m
}

// bucketSize is the number of entries sharing one cache-line-aligned
// cluster.
const bucketSize = 4

// Bucket is a cluster of bucketSize entries. Invariant: entry 0 is the
// most-recently-used for its key.
type Bucket struct {
	entries [bucketSize]Entry
}

// Table is the bucketed transposition table.
type Table struct {
	buckets []Bucket
	mask    uint64
	age     uint8
}

// New creates a table sized to the largest power-of-2 bucket count that
// fits within sizeMB megabytes.
func New(sizeMB int) *Table {
	bucketBytes := uint64(bucketSize) * 32 // nominal entry footprint
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketBytes
	numBuckets = roundDownPow2(numBuckets)
	if numBuckets == 0 {
		numBuckets = 1
	}
	t := &Table{
		buckets: make([]Bucket, numBuckets),
		mask:    numBuckets - 1,
	}
	t.Clear()
	return t
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *Table) bucketFor(hash uint64) *Bucket {
	return &t.buckets[hash&t.mask]
}

// Probe scans the 4 entries of hash's bucket for a match. On hit, promotes
// the match to slot 0 (MRU) and returns it with found=true. On miss it
// returns slot 0 anyway (the caller inspects Key to confirm).
func (t *Table) Probe(hash uint64) (Entry, bool) {
	b := t.bucketFor(hash)
	for i := 0; i < bucketSize; i++ {
		if b.entries[i].Key == hash && b.entries[i].Depth > 0 {
			if i != 0 {
				hit := b.entries[i]
				copy(b.entries[1:i+1], b.entries[0:i])
				b.entries[0] = hit
			}
			return b.entries[0], true
		}
	}
	return b.entries[0], false
}

// Get implements the search-facing probe contract: given (hash, ply,
// searchDepth, alpha, beta), returns the usable score (if the bound
// honours the window) plus the best move and static eval, which are valid
// on any hash match regardless of whether the score itself was usable.
type ProbeResult struct {
	Hit        bool
	ScoreValid bool
	Score      int
	BestMove   board.Move
	StaticEval int
	Depth      int
}

func (t *Table) Get(hash uint64, ply, searchDepth, alpha, beta int) ProbeResult {
	entry, hit := t.Probe(hash)
	if !hit {
		return ProbeResult{}
	}
	res := ProbeResult{
		Hit:        true,
		BestMove:   entry.BestMove,
		StaticEval: int(entry.StaticEval),
		Depth:      int(entry.Depth),
	}
	if int(entry.Depth) < searchDepth {
		return res
	}
	score := adjustFromTT(int(entry.Score), ply)
	switch entry.Bound() {
	case BoundExact:
		res.ScoreValid = true
	case BoundAlpha:
		res.ScoreValid = score <= alpha
	case BoundBeta:
		res.ScoreValid = score >= beta
	}
	if res.ScoreValid {
		res.Score = score
	}
	return res
}

// Store writes a result into hash's bucket, replacing either the matching
// slot or the entry minimising depth - ageDiff*4.
func (t *Table) Store(hash uint64, depth, ply, score, staticEval int, bound Bound, pv bool, bestMove board.Move) {
	b := t.bucketFor(hash)

	victim := 0
	worst := replacementScore(b.entries[0], t.age)
	for i := 1; i < bucketSize && b.entries[0].Key != hash; i++ {
		if b.entries[i].Key == hash {
			victim = i
			break
		}
		s := replacementScore(b.entries[i], t.age)
		if s < worst {
			worst = s
			victim = i
		}
	}

	e := &b.entries[victim]
	// Keep an existing best move if the new store has none and it's the
	// same position (e.g. an all-node store after a fail-low re-search).
	if e.Key == hash && bestMove == board.NoMove {
		bestMove = e.BestMove
	}
	e.Key = hash
	e.BestMove = bestMove
	e.Score = int16(adjustToTT(score, ply))
	e.StaticEval = int16(staticEval)
	e.Depth = int8(depth)
	e.meta = packMeta(bound, pv, t.age)
}

func replacementScore(e Entry, currentAge uint8) int {
	if e.Depth == 0 {
		return -1 << 30
	}
	ageDiff := (currentAge - e.Age()) & 0x1F
	return int(e.Depth) - int(ageDiff)*4
}

// NewSearch increments the generation counter, used by the replacement
// scheme to prefer fresh entries over stale ones at equal depth.
func (t *Table) NewSearch() {
	t.age = (t.age + 1) & 0x1F
}

// Clear zeroes every entry and resets age to 1, so the very first search
// round already sees a non-zero age difference against empty slots.
func (t *Table) Clear() {
	for i := range t.buckets {
		t.buckets[i] = Bucket{}
	}
	t.age = 1
}

// Occupied returns the permille (parts-per-thousand) occupancy of the
// table, sampling up to 1000 buckets for the UCI `hashfull` field.
func (t *Table) Occupied() int {
	sample := 1000
	if sample > len(t.buckets) {
		sample = len(t.buckets)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.buckets[i].entries[0].Depth > 0 && t.buckets[i].entries[0].Age() == t.age {
			used++
		}
	}
	return used * 1000 / sample
}

// adjustFromTT converts an absolute (root-relative) mate score stored in
// the table into a ply-relative one for use at the current node.
func adjustFromTT(score, ply int) int {
	if score > mateScore-maxPly {
		return score - ply
	}
	if score < -mateScore+maxPly {
		return score + ply
	}
	return score
}

// adjustToTT converts a ply-relative mate score back to absolute before
// writing it to the table.
func adjustToTT(score, ply int) int {
	if score > mateScore-maxPly {
		return score + ply
	}
	if score < -mateScore+maxPly {
		return score - ply
	}
	return score
}

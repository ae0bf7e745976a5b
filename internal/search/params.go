package search

// Frozen tuning constants shared by the whole search. Collected in one
// place instead of scattered across files, matching the teacher's habit
// of keeping small typed constant blocks next to the code that uses them,
// consolidated here since the single-threaded search is one package.
const (
	Infinity          = 60000
	Checkmate         = 50000
	NNUEMax           = Checkmate - 100
	MaxDepth          = 255
	TBDepth           = 254
	QDepth            = 0
	QuietMoves        = 64
	MaxPly            = MaxDepth
	SearchStackPrefix = 2
)

// Bound flags for transposition table entries.
const (
	BoundNone  = 0
	BoundAlpha = 1
	BoundBeta  = 2
	BoundExact = 3
)

// MateIn returns the score recorded for "mate delivered at this ply".
func MateIn(ply int) int { return Infinity - ply }

// MatedIn returns the score recorded for "mated at this ply".
func MatedIn(ply int) int { return -Infinity + ply }

// IsWin reports whether score is a proven, non-tablebase-only win.
func IsWin(score int) bool { return score >= Checkmate }

// IsLoss reports whether score is a proven loss.
func IsLoss(score int) bool { return score <= -Checkmate }

// IsDecisive reports whether score is a proven win or loss (mate bound).
func IsDecisive(score int) bool { return IsWin(score) || IsLoss(score) }

// Aspiration window half-width around the previous iteration's score.
const AspirationWindow = 12

// Static (reverse futility) pruning: margin per remaining depth.
const (
	StaticNullMarginPerDepth = 75
	StaticNullMaxDepth       = 8
)

// Null-move pruning: base reduction and depth divisor.
const (
	NMPDepthBase    = 3
	NMPDepthDivisor = 4
	NMPMinPly       = 0
	NMPEvalMargin   = 200
	NMPEvalMaxBonus = 3
)

// Razoring: drop straight to quiescence when hopelessly behind.
const (
	RazorMarginPerDepth = 300
	RazorMaxDepth       = 3
)

// Late move pruning: move-count threshold indexed by [improving][depth],
// capped at the table length; depths beyond the table never prune by count.
var LMPThreshold = [2][9]int{
	{0, 5, 8, 13, 20, 29, 40, 53, 68},  // not improving
	{0, 8, 13, 20, 30, 42, 56, 73, 92}, // improving
}

// History pruning: skip quiet moves with a history score below this at
// shallow depth.
const HistoryPruningThreshold = -2000

// Futility pruning in the main search (depth <= 8).
const (
	FutilityMarginBase     = 100
	FutilityMarginPerDepth = 90
	FutilityMaxDepth       = 8
)

// Quiescence search tuning.
const (
	QuiescenceDeltaMargin = 300
	QuiescenceSEEFloor    = -80
	MaxQuiescencePly      = 32
)

// Late move reduction table, computed once at init (see lmr.go).
var LMRTable [64][64]int

// Singular extension margins.
const (
	SingularMarginPerDepth = 2
	SingularDepthMin       = 6
	DoubleExtMargin        = 12
	TripleExtMargin        = 24
)

// Probcut / multicut.
const (
	ProbcutDepthMin  = 5
	ProbcutMargin    = 150
	MulticutDepthMin = 8
	MulticutMoves    = 6
	MulticutRequired = 4
)

// Check/threat extension.
const (
	ThreatExtensionMinDepth  = 5
	ThreatExtensionThreshold = 50
)

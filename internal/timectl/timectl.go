// Package timectl computes the search's time budget for a move. It
// replaces the teacher's ad hoc stability/instability heuristic
// (internal/engine/timeman.go) with a single closed-form formula.
package timectl

import (
	"math"
	"time"
)

// TimeMax is the sentinel meaning "no time control supplied"; the engine
// falls back to MoveTime in that case.
const TimeMax = time.Duration(math.MaxInt64)

// Limits mirrors the teacher's UCILimits shape: the go-command parameters
// relevant to time allocation.
type Limits struct {
	Time      time.Duration // remaining time for the side to move
	Inc       time.Duration // increment per move for the side to move
	MovesToGo int           // 0 means sudden death
	MoveTime  time.Duration // fixed per-move time, overrides everything else
	Overhead  time.Duration // move overhead reserved against network/GUI lag
}

// Budget is the computed soft/hard deadlines for one search.
type Budget struct {
	Optimum time.Duration
	Maximum time.Duration
}

// Compute returns the time budget for ply (the current game ply, used by
// opt_scale's depth-dependent term) given limits.
func Compute(limits Limits, ply int) Budget {
	if limits.MoveTime > 0 {
		return Budget{Optimum: limits.MoveTime, Maximum: limits.MoveTime}
	}
	if limits.Time <= 0 || limits.Time >= TimeMax {
		return Budget{Optimum: time.Hour, Maximum: time.Hour}
	}

	timeMs := float64(limits.Time.Milliseconds())
	incMs := float64(limits.Inc.Milliseconds())
	overheadMs := float64(limits.Overhead.Milliseconds())

	centMtg := 5051.0
	if timeMs < 1000 {
		centMtg = timeMs * 5.051
	}

	timeLeft := timeMs + (incMs*(centMtg-100)-overheadMs*(200+centMtg))/100
	if timeLeft < 1 {
		timeLeft = 1
	}

	originalTimeAdjust := 0.3128*math.Log10(timeLeft) - 0.4354

	optConstant := 0.0032116 + 0.000321123*math.Log10(timeMs/1000)
	if optConstant > 0.00508017 {
		optConstant = 0.00508017
	}

	bonusScale := math.Pow(float64(ply)+2.94693, 0.461073) * optConstant
	capScale := 0.213035 * timeMs / timeLeft
	optScale := math.Min(0.0201431+bonusScale, capScale) * originalTimeAdjust

	deadlineMs := math.Max(100, optScale*timeLeft)

	hardCapMs := timeMs - overheadMs
	if hardCapMs < deadlineMs {
		deadlineMs = hardCapMs
	}
	if limits.MoveTime > 0 && float64(limits.MoveTime.Milliseconds()) < deadlineMs {
		deadlineMs = float64(limits.MoveTime.Milliseconds())
	}
	if deadlineMs < 1 {
		deadlineMs = 1
	}

	optimum := time.Duration(deadlineMs * float64(time.Millisecond))
	maximum := optimum * 5
	if maxFromRemaining := time.Duration(hardCapMs * float64(time.Millisecond)); maximum > maxFromRemaining && maxFromRemaining > 0 {
		maximum = maxFromRemaining
	}
	return Budget{Optimum: optimum, Maximum: maximum}
}

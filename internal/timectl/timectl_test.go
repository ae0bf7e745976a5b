package timectl

import (
	"testing"
	"time"
)

func TestFixedMoveTimeOverridesEverything(t *testing.T) {
	b := Compute(Limits{MoveTime: 500 * time.Millisecond, Time: 10 * time.Second}, 10)
	if b.Optimum != 500*time.Millisecond || b.Maximum != 500*time.Millisecond {
		t.Fatalf("fixed move time not honoured: %+v", b)
	}
}

func TestNoTimeControlFallsBackToLongBudget(t *testing.T) {
	b := Compute(Limits{Time: TimeMax}, 0)
	if b.Optimum < time.Minute {
		t.Fatalf("expected a long budget with no time control, got %v", b.Optimum)
	}
}

func TestMoreRemainingTimeYieldsLargerBudget(t *testing.T) {
	short := Compute(Limits{Time: 5 * time.Second, Overhead: 30 * time.Millisecond}, 10)
	long := Compute(Limits{Time: 60 * time.Second, Overhead: 30 * time.Millisecond}, 10)
	if long.Optimum <= short.Optimum {
		t.Fatalf("expected more remaining time to grow the optimum budget: short=%v long=%v", short.Optimum, long.Optimum)
	}
}

func TestDeadlineNeverExceedsRemainingMinusOverhead(t *testing.T) {
	b := Compute(Limits{Time: 2 * time.Second, Overhead: 100 * time.Millisecond}, 0)
	if b.Optimum > 2*time.Second-100*time.Millisecond+time.Millisecond {
		t.Fatalf("optimum %v exceeds remaining-minus-overhead budget", b.Optimum)
	}
}

func TestIncrementIncreasesBudget(t *testing.T) {
	noInc := Compute(Limits{Time: 10 * time.Second}, 10)
	withInc := Compute(Limits{Time: 10 * time.Second, Inc: 2 * time.Second}, 10)
	if withInc.Optimum <= noInc.Optimum {
		t.Fatalf("expected increment to grow the optimum: noInc=%v withInc=%v", noInc.Optimum, withInc.Optimum)
	}
}

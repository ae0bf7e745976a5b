package timer

import "testing"

func TestIsStoppedInitiallyFalse(t *testing.T) {
	tm := New()
	tm.Start(1000)
	if tm.IsStopped() {
		t.Fatal("fresh timer with a future deadline reported stopped")
	}
}

func TestStopIsImmediate(t *testing.T) {
	tm := New()
	tm.Start(60000)
	tm.Stop()
	if !tm.IsStopped() {
		t.Fatal("Stop did not latch IsStopped")
	}
}

func TestCheckLatchesAfterDeadline(t *testing.T) {
	tm := New()
	tm.Start(-1) // no deadline; the target is set to the start time below
	tm.target = tm.start
	tm.Check()
	if !tm.IsStopped() {
		t.Fatal("Check did not latch stopped once past the deadline")
	}
}

func TestNoDeadlineNeverLatches(t *testing.T) {
	tm := New()
	tm.Start(0)
	tm.Check()
	if tm.IsStopped() {
		t.Fatal("zero duration should mean no deadline, not instant stop")
	}
}

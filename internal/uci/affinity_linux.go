//go:build linux

package uci

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore locks the calling goroutine to its own OS thread and pins
// that thread to a single CPU core, for `setoption name CoreAff value N`.
// core < 0 releases any existing pin back to the full affinity mask.
func pinToCore(core int) error {
	if core < 0 {
		var all unix.CPUSet
		for i := 0; i < runtime.NumCPU(); i++ {
			all.Set(i)
		}
		err := unix.SchedSetaffinity(0, &all)
		runtime.UnlockOSThread()
		if err != nil {
			return fmt.Errorf("reset core affinity: %w", err)
		}
		return nil
	}

	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("pin to core %d: %w", core, err)
	}
	return nil
}

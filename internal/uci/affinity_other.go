//go:build !linux

package uci

// pinToCore is a no-op outside Linux; SchedSetaffinity has no portable
// equivalent, so CoreAff is accepted but silently has no effect.
func pinToCore(core int) error { return nil }

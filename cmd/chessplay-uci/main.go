package main

import (
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/chessplay-uci/internal/search"
	"github.com/hailam/chessplay-uci/internal/uci"
)

// defaultNet is the file name auto-loading looks for in the standard
// search paths below (Stockfish-style NNUE network naming kept for
// familiarity, though the format itself is this module's own).
const defaultNet = "nn-chessplay.nnue"

var (
	cpuprofile = pflag.String("cpuprofile", "", "write a CPU profile to this file for the whole process lifetime")
	hashMB     = pflag.Int("hash", 64, "transposition table size in megabytes")
	weights    = pflag.String("weights", "", "path to an NNUE weights file (falls back to classical evaluation if empty or unloadable)")
	syzygyPath = pflag.String("syzygy", "", "path to local Syzygy tablebase files")
	benchDepth = pflag.Int("bench-depth", 0, "run the fixed bench suite at this depth and exit, instead of entering the UCI loop")
)

func main() {
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Error().Str("component", "main").Err(err).Msg("could not create CPU profile")
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Str("component", "main").Err(err).Msg("could not start CPU profile")
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("component", "main").Str("path", *cpuprofile).Msg("CPU profiling enabled")
	}

	eng := search.NewEngine(*hashMB)

	netPath := *weights
	if netPath == "" {
		netPath = findDefaultNet()
	}
	if netPath != "" {
		if err := eng.LoadNNUE(netPath); err != nil {
			log.Warn().Str("component", "main").Err(err).Str("path", netPath).Msg("NNUE load failed, using classical evaluation")
		} else {
			eng.SetUseNNUE(true)
			log.Info().Str("component", "main").Str("path", netPath).Msg("NNUE network loaded")
		}
	}

	protocol := uci.New(eng)

	if *syzygyPath != "" {
		protocol.SetSyzygyPath(*syzygyPath)
	}

	if *benchDepth > 0 {
		protocol.Bench(*benchDepth)
		os.Exit(0)
	}

	protocol.Run()
}

// findDefaultNet searches the standard per-user and working-directory
// locations for a weights file, mirroring the teacher's autoLoadNNUE.
func findDefaultNet() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	searchDirs := []string{
		filepath.Join(home, ".chessplay", "nnue"),
		"./nnue",
		".",
	}

	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, defaultNet)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

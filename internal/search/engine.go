package search

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chessplay-uci/internal/board"
	"github.com/hailam/chessplay-uci/internal/nnue"
	"github.com/hailam/chessplay-uci/internal/tablebase"
	"github.com/hailam/chessplay-uci/internal/timectl"
	"github.com/hailam/chessplay-uci/internal/timer"
	"github.com/hailam/chessplay-uci/internal/tt"
)

// Engine is the UCI-facing façade over one Searcher: it owns the
// transposition table, the optional NNUE evaluator and tablebase oracle,
// and turns timectl.Limits into a running search. Where the teacher's
// Engine fans a `go` command out across a Lazy-SMP worker pool, this
// engine runs a single Searcher — the Non-goals carried into this module
// drop multi-threaded search in favor of a `CoreAff` affinity knob on
// that one thread.
type Engine struct {
	searcher  *Searcher
	table     *tt.Table
	tb        tablebase.Prober
	tbDepth   int
	useNNUE   bool
	weightsOK bool

	rootHashes []uint64

	OnInfo func(Info)
}

// NewEngine creates an engine with a table of the given size in megabytes
// and no NNUE network loaded (classical material+PST evaluation until
// LoadNNUE succeeds).
func NewEngine(ttSizeMB int) *Engine {
	table := tt.New(ttSizeMB)
	e := &Engine{
		searcher: NewSearcher(table, nil),
		table:    table,
		tbDepth:  1,
	}
	return e
}

// SetTablebase installs a tablebase oracle (Syzygy, Lichess, or a
// NoopProber) for root-move probing.
func (e *Engine) SetTablebase(tb tablebase.Prober) { e.tb = tb }

// HasTablebase reports whether a non-noop oracle is installed and ready.
func (e *Engine) HasTablebase() bool { return e.tb != nil && e.tb.Available() }

// SetSyzygyProbeDepth sets the minimum remaining depth at which a root
// tablebase probe is attempted (kept for UCI option parity; the single
// root probe this engine does is depth-independent, but the setting is
// still accepted so `setoption name SyzygyProbeDepth` never errors).
func (e *Engine) SetSyzygyProbeDepth(depth int) {
	if depth >= 1 {
		e.tbDepth = depth
	}
}

// SetPositionHistory records prior game positions for repetition
// detection across the upcoming search.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootHashes = append(e.rootHashes[:0], hashes...)
}

// LoadNNUE loads a network file and switches evaluation to NNUE on
// success; the classical evaluator remains the fallback on failure.
func (e *Engine) LoadNNUE(weightsFile string) error {
	log.Info().Str("component", "engine").Str("file", weightsFile).Msg("loading NNUE network")
	evalr, err := nnue.NewEvaluator(weightsFile)
	if err != nil {
		log.Error().Str("component", "engine").Err(err).Msg("failed to load NNUE network")
		return err
	}
	e.searcher.eval = evalr
	e.weightsOK = true
	e.useNNUE = true
	return nil
}

// SetUseNNUE toggles between the loaded NNUE network and the classical
// fallback without discarding either.
func (e *Engine) SetUseNNUE(use bool) {
	e.useNNUE = use && e.weightsOK
	if !e.useNNUE {
		e.searcher.eval = nil
	}
}

// UseNNUE reports the current evaluation mode.
func (e *Engine) UseNNUE() bool { return e.useNNUE }

// HasNNUE reports whether a network has been successfully loaded.
func (e *Engine) HasNNUE() bool { return e.weightsOK }

// Clear resets the transposition table and move-ordering state for a new
// game, mirroring the teacher's `ucinewgame` handling.
func (e *Engine) Clear() { e.searcher.NewGame() }

// Stop requests the in-flight search to unwind as soon as it next checks
// the clock.
func (e *Engine) Stop() {
	if e.searcher.timer != nil {
		e.searcher.timer.Stop()
	}
}

// Evaluate returns the static evaluation of a position under the
// engine's current evaluation mode.
func (e *Engine) Evaluate(pos *board.Position) int {
	e.searcher.pos = pos
	if e.searcher.eval != nil {
		e.searcher.eval.Reset()
		e.searcher.eval.Refresh(pos)
	}
	return e.searcher.evaluate()
}

// Perft counts leaf nodes depth plies deep, for the `perft` UCI command.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// SearchWithLimits probes the tablebase at the root, then runs iterative
// deepening under the budget timectl.Compute derives from limits. ply is
// the position's distance from the game's start, used by the time
// formula's opt_scale term.
func (e *Engine) SearchWithLimits(pos *board.Position, limits timectl.Limits, ply int) board.Move {
	if e.HasTablebase() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tb.MaxPieces() {
			if result := e.tb.ProbeRoot(pos); result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	budget := timectl.Compute(limits, ply)

	tm := timer.New()
	tm.Start(budget.Optimum.Milliseconds())

	e.searcher.SetRootHistory(e.rootHashes)
	e.searcher.InfoHook = e.OnInfo

	return e.searcher.Go(pos, MaxDepth-1, tm)
}

// HashFull returns the transposition table's permille occupancy, for the
// UCI `info ... hashfull` field.
func (e *Engine) HashFull() int { return e.table.Occupied() }

// SearchDepth runs a fixed-depth search with an effectively unlimited
// clock and reports the node count alongside the chosen move, for the
// "bench" command.
func (e *Engine) SearchDepth(pos *board.Position, depth int) (board.Move, uint64) {
	tm := timer.New()
	tm.Start(time.Hour.Milliseconds())

	e.searcher.SetRootHistory(nil)
	e.searcher.InfoHook = nil

	best := e.searcher.Go(pos, depth, tm)
	return best, e.searcher.nodes
}

// PersistTTTo checkpoints the current transposition table into a
// BadgerDB-backed store at dir, for `setoption name PersistTT`.
func (e *Engine) PersistTTTo(dir string) error {
	store, err := tt.OpenPersistentStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Checkpoint(e.table)
}

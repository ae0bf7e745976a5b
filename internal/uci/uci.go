// Package uci implements the Universal Chess Interface protocol loop
// that drives internal/search.Engine from stdin/stdout.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chessplay-uci/internal/board"
	"github.com/hailam/chessplay-uci/internal/search"
	"github.com/hailam/chessplay-uci/internal/tablebase"
	"github.com/hailam/chessplay-uci/internal/timectl"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *search.Engine
	position *board.Position

	// Position history for repetition detection.
	positionHashes []uint64

	// NNUE configuration.
	nnuePath string

	// Syzygy tablebase configuration.
	syzygyPath       string
	syzygyProbeDepth int
	syzygyProber     *tablebase.SyzygyProber

	// Search state.
	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	// CPU profiling.
	profileFile *os.File

	debug bool
}

// New creates a new UCI protocol handler.
func New(eng *search.Engine) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
	}
}

// SetSyzygyPath configures Syzygy tablebase probing before the UCI loop
// starts, for the `--syzygy` CLI flag.
func (u *UCI) SetSyzygyPath(path string) {
	u.syzygyPath = path
	u.initSyzygy()
}

// Bench runs the fixed bench suite at depth and prints its report, for
// the `--bench-depth` CLI flag's exit-without-a-UCI-session path.
func (u *UCI) Bench(depth int) {
	u.handleBench([]string{fmt.Sprintf("%d", depth)})
}

// Run starts the UCI main loop.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		case "bench":
			u.handleBench(args)
		}
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	fmt.Println("id name ChessPlay")
	fmt.Println("id author ChessPlay Team")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name UseNNUE type check default false")
	fmt.Println("option name EvalFile type string default <empty>")
	fmt.Println("option name SyzygyPath type string default <empty>")
	fmt.Println("option name SyzygyProbeDepth type spin default 1 min 1 max 100")
	fmt.Println("option name CoreAff type spin default -1 min -1 max 255")
	fmt.Println("option name PersistTT type string default <empty>")
	fmt.Println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.engine.Clear()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	u.positionHashes = nil
	var moveStart int

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "fen":
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}

		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			log.Warn().Str("component", "uci").Err(errors.Wrap(err, "parse fen")).Str("fen", fenStr).Msg("invalid FEN, position unchanged")
			return
		}
		u.position = pos

		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	default:
		return
	}

	u.positionHashes = append(u.positionHashes, u.position.Hash)

	if moveStart < len(args) {
		for _, moveStr := range args[moveStart:] {
			move := u.parseMove(moveStr)
			if move == board.NoMove {
				log.Warn().Str("component", "uci").Str("move", moveStr).Msg("invalid move in position command")
				return
			}
			u.position.MakeMove(move)
			u.position.UpdateCheckers()
			u.positionHashes = append(u.positionHashes, u.position.Hash)
		}
	}
}

// parseMove converts a UCI move string to a board.Move.
func (u *UCI) parseMove(moveStr string) board.Move {
	if len(moveStr) < 4 {
		return board.NoMove
	}

	fromFile := int(moveStr[0] - 'a')
	fromRank := int(moveStr[1] - '1')
	toFile := int(moveStr[2] - 'a')
	toRank := int(moveStr[3] - '1')

	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 ||
		toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return board.NoMove
	}

	from := board.NewSquare(fromFile, fromRank)
	to := board.NewSquare(toFile, toRank)

	var promo board.PieceType
	if len(moveStr) == 5 {
		switch moveStr[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}

	moves := u.position.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == from && m.To() == to {
			if promo != 0 {
				if m.IsPromotion() && m.Promotion() == promo {
					return m
				}
			} else if !m.IsPromotion() {
				return m
			}
		}
	}

	return board.NoMove
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	opts := u.parseGoOptions(args)

	u.engine.SetPositionHistory(u.positionHashes)
	u.engine.OnInfo = func(info search.Info) {
		u.sendInfo(info)
	}

	limits := u.calculateLimits(opts)
	ply := len(u.positionHashes)

	u.searching = true
	u.stopRequested.Store(false)
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()

	go func() {
		defer close(u.searchDone)

		bestMove := u.engine.SearchWithLimits(pos, limits, ply)

		u.searching = false

		validationPos := u.position.Copy()
		if bestMove != board.NoMove {
			if isLegalIn(validationPos, bestMove) {
				fmt.Printf("bestmove %s\n", bestMove.String())
				return
			}
			log.Error().Str("component", "uci").Str("move", bestMove.String()).Msg("search returned illegal move, falling back")
		}

		legal := validationPos.GenerateLegalMoves()
		if legal.Len() > 0 {
			fmt.Printf("bestmove %s\n", legal.Get(0).String())
		} else {
			fmt.Println("bestmove 0000")
		}
	}()
}

func isLegalIn(pos *board.Position, m board.Move) bool {
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == m {
			return true
		}
	}
	return false
}

// parseGoOptions parses "go" command arguments.
func (u *UCI) parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				opts.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions into timectl.Limits for the side to
// move, using whichever clock (wtime/btime) belongs to us.
func (u *UCI) calculateLimits(opts GoOptions) timectl.Limits {
	if opts.Infinite {
		return timectl.Limits{Time: timectl.TimeMax}
	}
	if opts.MoveTime > 0 {
		return timectl.Limits{MoveTime: opts.MoveTime}
	}

	var ourTime, ourInc time.Duration
	if u.position.SideToMove == board.White {
		ourTime, ourInc = opts.WTime, opts.WInc
	} else {
		ourTime, ourInc = opts.BTime, opts.BInc
	}

	if ourTime <= 0 {
		return timectl.Limits{Time: timectl.TimeMax}
	}

	return timectl.Limits{
		Time:      ourTime,
		Inc:       ourInc,
		MovesToGo: opts.MovesToGo,
		Overhead:  30 * time.Millisecond,
	}
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info search.Info) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	switch {
	case info.Score >= search.Checkmate-100:
		mateIn := (search.Infinity - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	case info.Score <= -search.Checkmate+100:
		mateIn := -(search.Infinity + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("hashfull %d", u.engine.HashFull()))

	if len(info.PV) > 0 {
		validPV := make([]string, 0, len(info.PV))
		testPos := u.position.Copy()
		for _, move := range info.PV {
			if !isLegalIn(testPos, move) {
				break
			}
			validPV = append(validPV, move.String())
			testPos.MakeMove(move)
		}
		if len(validPV) > 0 {
			parts = append(parts, "pv "+strings.Join(validPV, " "))
		}
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search.
func (u *UCI) handleStop() {
	if u.searching {
		u.stopRequested.Store(true)
		u.engine.Stop()
		<-u.searchDone
	}
}

// handleQuit exits the program.
func (u *UCI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		log.Info().Str("component", "uci").Msg("CPU profile saved")
	}
	os.Exit(0)
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		// Resizing an existing table is not supported; Hash only takes
		// effect on process start via --hash.
	case "usennue":
		useNNUE := strings.ToLower(value) == "true"
		if useNNUE && u.nnuePath != "" && !u.engine.HasNNUE() {
			if err := u.engine.LoadNNUE(u.nnuePath); err != nil {
				log.Error().Str("component", "uci").Err(err).Msg("failed to load NNUE")
				return
			}
		}
		u.engine.SetUseNNUE(useNNUE)
	case "evalfile":
		u.nnuePath = value
		u.tryLoadNNUE()
	case "syzygypath":
		u.syzygyPath = value
		u.initSyzygy()
	case "syzygyprobedepth":
		depth, err := strconv.Atoi(value)
		if err == nil && depth >= 1 {
			u.syzygyProbeDepth = depth
			u.engine.SetSyzygyProbeDepth(depth)
		}
	case "coreaff":
		core, err := strconv.Atoi(value)
		if err != nil {
			return
		}
		if err := pinToCore(core); err != nil {
			log.Warn().Str("component", "uci").Err(err).Int("core", core).Msg("failed to pin thread to core")
		}
	case "persisttt":
		if value != "" {
			if err := u.engine.PersistTTTo(value); err != nil {
				log.Error().Str("component", "uci").Err(err).Str("path", value).Msg("failed to persist transposition table")
			}
		}
	case "debug":
		u.debug = strings.ToLower(value) == "true"
		if u.debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	case "cpuprofile":
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.profileFile = nil
			log.Info().Str("component", "uci").Msg("CPU profile stopped")
		}
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				log.Error().Str("component", "uci").Err(errors.Wrap(err, "create cpu profile")).Msg("failed to create profile")
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				log.Error().Str("component", "uci").Err(err).Msg("failed to start profile")
				return
			}
			u.profileFile = f
			log.Info().Str("component", "uci").Str("path", value).Msg("CPU profiling started")
		}
	}
}

// tryLoadNNUE attempts to load the NNUE network once its path is set.
func (u *UCI) tryLoadNNUE() {
	if u.nnuePath == "" {
		return
	}
	if err := u.engine.LoadNNUE(u.nnuePath); err != nil {
		log.Error().Str("component", "uci").Err(err).Msg("failed to load NNUE")
	} else {
		log.Info().Str("component", "uci").Str("path", u.nnuePath).Msg("NNUE network loaded")
	}
}

// initSyzygy initializes Syzygy tablebase probing.
func (u *UCI) initSyzygy() {
	if u.syzygyPath == "" {
		return
	}

	u.syzygyProber = tablebase.NewSyzygyProber(u.syzygyPath)
	u.engine.SetTablebase(u.syzygyProber)

	probeDepth := u.syzygyProbeDepth
	if probeDepth < 1 {
		probeDepth = 1
	}
	u.engine.SetSyzygyProbeDepth(probeDepth)

	log.Info().Str("component", "uci").Str("path", u.syzygyPath).Msg("Syzygy tablebase initialized")
}

// handlePerft runs a perft test from the current position.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Printf("NPS: %.0f\n", nps)
	}
}

// benchPositions is a fixed suite used by the "bench" command, spanning
// opening, middlegame, endgame and tactical material imbalances.
var benchPositions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 1",
}

// handleBench runs a fixed suite of positions at a given depth and
// reports total nodes and nodes-per-second, in the style of "perft".
func (u *UCI) handleBench(args []string) {
	depth := 10
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	var totalNodes uint64
	start := time.Now()

	for _, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			log.Error().Str("component", "uci").Err(err).Str("fen", fen).Msg("bench: invalid position, skipping")
			continue
		}
		u.engine.Clear()
		_, nodes := u.engine.SearchDepth(pos, depth)
		totalNodes += nodes
	}

	elapsed := time.Since(start)

	fmt.Printf("Bench depth: %d\n", depth)
	fmt.Printf("Total nodes: %d\n", totalNodes)
	fmt.Printf("Total time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(totalNodes) / elapsed.Seconds()
		fmt.Printf("NPS: %.0f\n", nps)
	}
}

// Command engine is a UCI-like protocol loop around the search core,
// grounded on original_source/src/comm.rs's UciLike trait: a read-eval
// loop over stdin commands (position, go, setoption, isready, d, tree,
// quit, bench), reporting through "info"/"bestmove" lines on stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/castling-labs/puct/arena"
	"github.com/castling-labs/puct/dualnet"
	"github.com/castling-labs/puct/game"
	"github.com/castling-labs/puct/mctsparams"
	"github.com/castling-labs/puct/search"
)

var (
	movesFlag   = flag.String("moves", "chess_moves.txt", "UCI move list fixing the network's action space")
	weightsFlag = flag.String("weights", "", "path to a dualnet.Weights gob file; all-zero weights if empty")
	hiddenFlag  = flag.Int("hidden", 128, "hidden layer width for a freshly initialised network")
	treeMBFlag  = flag.Int("tree-mb", 256, "arena size in megabytes")
)

type engine struct {
	tree    *arena.Tree
	params  mctsparams.Config
	net     *dualnet.Net
	pos     *game.Chess
	prev    game.Capability
	history []uint64

	reportMoves bool
}

func main() {
	flag.Parse()

	actions, err := countMoves(*movesFlag)
	if err != nil {
		log.Fatal(err)
	}

	conf := dualnet.Config{Features: game.FeatureCount, Hidden: *hiddenFlag, ActionSpace: actions}
	weights, err := loadOrInitWeights(*weightsFlag, conf)
	if err != nil {
		log.Fatal(err)
	}
	net, err := dualnet.New(conf, weights)
	if err != nil {
		log.Fatal(err)
	}
	defer net.Close()

	pos, err := game.NewChess(*movesFlag, net)
	if err != nil {
		log.Fatal(err)
	}

	e := &engine{
		tree:   arena.NewMB(*treeMBFlag),
		params: mctsparams.Default(),
		net:    net,
		pos:    pos,
	}

	e.run()
}

func countMoves(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}

func loadOrInitWeights(path string, conf dualnet.Config) (dualnet.Weights, error) {
	if path == "" {
		return dualnet.Weights{
			W1: make([]float32, conf.Features*conf.Hidden),
			B1: make([]float32, conf.Hidden),
			WP: make([]float32, conf.Hidden*conf.ActionSpace),
			BP: make([]float32, conf.ActionSpace),
			WV: make([]float32, conf.Hidden),
			BV: make([]float32, 1),
		}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return dualnet.Weights{}, err
	}
	defer f.Close()
	return dualnet.Load(f)
}

func (e *engine) run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "uci":
			preamble()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			e.prev = nil
			e.tree.Clear()
		case "setoption":
			e.setoption(fields)
		case "position":
			e.position(fields)
		case "go":
			e.goCommand(fields)
		case "d":
			fmt.Println(e.pos.Board().Draw())
		case "tree":
			depth := 4
			if len(fields) > 1 {
				if d, err := strconv.Atoi(fields[1]); err == nil {
					depth = d
				}
			}
			if err := e.tree.Display(os.Stdout, e.tree.Root(), depth); err != nil {
				log.Println(err)
			}
		case "bench":
			e.bench(fields)
		case "quit":
			return
		}
	}
}

// benchLines is a small fixed set of opening move sequences from the
// starting position, standing in for original_source's FEN_STRING: each
// line fixes a distinct position to search, so bench results are
// comparable run over run.
var benchLines = [][]string{
	{},
	{"e2e4", "e7e5", "g1f3", "b8c6"},
	{"d2d4", "d7d5", "c2c4", "e7e6"},
	{"e2e4", "c7c5", "g1f3", "d7d6"},
	{"g1f3", "d7d5", "d2d4", "g8f6"},
}

// bench runs every line in benchLines to a fixed depth and reports
// aggregate nodes/nps, grounded on original_source/src/comm.rs::bench.
func (e *engine) bench(fields []string) {
	depth := 6
	if len(fields) > 1 {
		if d, err := strconv.Atoi(fields[1]); err == nil {
			depth = d
		}
	}

	totalNodes := 0
	start := time.Now()

	for _, line := range benchLines {
		pos, err := game.NewChess(*movesFlag, e.net)
		if err != nil {
			log.Fatal(err)
		}
		for _, uci := range line {
			mov, ok := findMove(pos, uci)
			if !ok {
				continue
			}
			pos.MakeMove(mov)
		}

		tree := arena.NewCap(1_000_000)
		searcher := search.NewSearcher(tree, e.params, pos, nil, nil)
		searcher.Search(search.Limits{MaxDepth: depth, MaxNodes: 1_000_000}, false, &totalNodes, nil)
	}

	nps := float64(totalNodes) / time.Since(start).Seconds()
	fmt.Printf("Bench: %d nodes %.0f nps\n", totalNodes, nps)
}

func preamble() {
	fmt.Println("id name puct")
	fmt.Println("id author castling-labs")
	fmt.Println("option name report_moves type check default false")
	fmt.Println("option name cpuct type string default 1.4")
	fmt.Println("option name root_cpuct type string default 1.4")
	fmt.Println("option name fpu type string default 0.0")
	fmt.Println("uciok")
}

func (e *engine) setoption(fields []string) {
	if len(fields) == 3 && fields[1] == "name" && fields[2] == "report_moves" {
		e.reportMoves = !e.reportMoves
		return
	}
	// setoption name <name> value <value>
	if len(fields) != 5 || fields[1] != "name" || fields[3] != "value" {
		return
	}
	v, err := strconv.ParseFloat(fields[4], 32)
	if err != nil {
		return
	}
	_ = e.params.Set(fields[2], float32(v))
}

func (e *engine) position(fields []string) {
	pos, err := game.NewChess(*movesFlag, e.net)
	if err != nil {
		log.Fatal(err)
	}

	movesIdx := -1
	for i, f := range fields {
		if f == "moves" {
			movesIdx = i
			break
		}
	}

	applyMoves := fields
	if movesIdx >= 0 {
		applyMoves = fields[movesIdx+1:]
	}

	e.history = e.history[:0]
	if movesIdx >= 0 {
		for _, uci := range applyMoves {
			mov, ok := findMove(pos, uci)
			if !ok {
				continue
			}
			e.history = append(e.history, pos.Hash())
			pos.MakeMove(mov)
		}
	}

	e.pos = pos
}

func findMove(pos *game.Chess, uci string) (game.Move, bool) {
	for _, mov := range pos.LegalMoves() {
		if pos.UCI(mov) == uci {
			return mov, true
		}
	}
	return 0, false
}

func (e *engine) goCommand(fields []string) {
	var maxNodes = 10_000_000
	var maxDepth = 256
	var maxTime *time.Duration

	var times, incs [2]*int
	movestogo := 30

	mode := ""
	for _, f := range fields[1:] {
		switch f {
		case "nodes", "movetime", "depth", "wtime", "btime", "winc", "binc", "movestogo":
			mode = f
		default:
			n, err := strconv.Atoi(f)
			if err != nil {
				mode = ""
				continue
			}
			switch mode {
			case "nodes":
				maxNodes = n
			case "movetime":
				d := time.Duration(n) * time.Millisecond
				maxTime = &d
			case "depth":
				maxDepth = n
			case "wtime":
				times[0] = &n
			case "btime":
				times[1] = &n
			case "winc":
				incs[0] = &n
			case "binc":
				incs[1] = &n
			case "movestogo":
				movestogo = n
			}
		}
	}

	stm := 0
	if e.pos.Turn().String() == "Black" {
		stm = 1
	}
	if times[stm] != nil {
		base := *times[stm] / max(movestogo, 1)
		if incs[stm] != nil {
			base += *incs[stm] * 3 / 4
		}
		base -= 5 // move overhead
		if base < 0 {
			base = 0
		}
		d := time.Duration(base) * time.Millisecond
		if maxTime == nil || d < *maxTime {
			maxTime = &d
		}
	}

	searcher := search.NewSearcher(e.tree, e.params, e.pos, e.history, func(info search.Info) {
		e.printInfo(info)
	})

	mov, _ := searcher.Search(search.Limits{MaxTime: maxTime, MaxDepth: maxDepth, MaxNodes: maxNodes}, true, nil, e.prev)

	fmt.Printf("bestmove %s\n", e.pos.UCI(mov))
	e.prev = e.pos
}

func (e *engine) printInfo(info search.Info) {
	pvStr := strings.Builder{}
	for _, mov := range info.PV {
		pvStr.WriteString(e.pos.UCI(mov))
		pvStr.WriteByte(' ')
	}

	score := fmt.Sprintf("cp %d", info.ScoreCP)
	if info.Mate != 0 {
		score = fmt.Sprintf("mate %d", info.Mate)
	}

	fmt.Printf("info depth %d seldepth %d score %s time %d nodes %d nps %d hashfull %d pv %s\n",
		info.Depth, info.SelDepth, score, info.Elapsed.Milliseconds(), info.Nodes, info.NPS, info.HashFull, pvStr.String())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

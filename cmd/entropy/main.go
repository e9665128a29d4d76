// Command entropy plays Entropy (Order and Chaos): with no arguments it
// speaks the line-oriented referee protocol over stdin/stdout, playing
// Order; "benchmark" times the search in isolation; "competition" pits two
// agent configurations against each other directly, roles swapped each
// round.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/ochaos/entropy/internal/agent"
	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/mcts"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/profilers"
	"github.com/ochaos/entropy/internal/rollout"
	"github.com/ochaos/entropy/internal/ui/console"
	"github.com/ochaos/entropy/internal/ui/spinning"
	"github.com/ochaos/entropy/internal/zobrist"
)

var (
	flagAIConfig  = flag.String("config", "mcts,rollouts=4000", "Agent configuration playing Order in console mode, or the first agent in competition mode")
	flagAIConfig2 = flag.String("config2", "mcts,rollouts=4000", "Second agent configuration, used by the competition command")
	flagGames     = flag.Int("games", 10, "Number of games to play, for the competition command")
	flagRollouts  = flag.Int("rollouts", 4000, "Rollout budget per move, for the benchmark command")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	profilers.Setup(ctx)
	defer profilers.OnQuit()

	switch cmd := flag.Arg(0); cmd {
	case "", "console":
		runConsole(ctx)
	case "benchmark":
		runBenchmark(ctx)
	case "competition":
		runCompetition(ctx)
	default:
		exceptions.Panicf("unknown command %q, expected one of: console, benchmark, competition", cmd)
	}
}

func runConsole(ctx context.Context) {
	a := must.M1(agent.New(*flagAIConfig, uint64(time.Now().UnixNano()), 1))
	if err := console.Run(ctx, a, os.Stdin, os.Stdout); err != nil {
		klog.Exitf("console protocol terminated: %+v", err)
	}
}

// benchmarkBoard builds a fixed, partially-filled position so repeated
// benchmark runs are comparable across changes to the search code.
func benchmarkBoard() (game.BoardState, pool.Pool) {
	b := game.NewBoardState()
	p := pool.New()
	seed := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 20; i++ {
		colour, err := p.Draw(seed)
		if err != nil {
			break
		}
		pos := rollout.BestChaosPlacement(&b, colour, seed)
		if err := b.Place(game.ChaosMove{Pos: pos, Colour: colour}); err != nil {
			klog.Fatalf("benchmark: failed to build fixed position: %v", err)
		}
	}
	return b, p
}

func runBenchmark(ctx context.Context) {
	board, p := benchmarkBoard()

	// Rollout-only: time smart_rollout in isolation, no tree.
	const rolloutSamples = 2000
	rolloutRNG := rand.New(rand.NewPCG(7, 7))
	start := time.Now()
	for i := 0; i < rolloutSamples; i++ {
		rollout.SmartRollout(board, p, game.Order, rolloutRNG)
	}
	rolloutElapsed := time.Since(start)
	fmt.Fprintf(os.Stderr, "rollout-only: %d rollouts in %s (%.0f rollouts/s)\n",
		rolloutSamples, rolloutElapsed, float64(rolloutSamples)/rolloutElapsed.Seconds())

	// Ponder-only: time tree_search for a fixed rollout budget.
	params := mcts.DefaultParams()
	search := mcts.NewSearch(params, rand.New(rand.NewPCG(9, 9)))
	root := search.NewOrderRoot(board, p, zobristOf(&board))
	start = time.Now()
	search.RunOrderRoot(ctx, root, *flagRollouts)
	searchElapsed := time.Since(start)
	stats := search.Stats()
	fmt.Fprintf(os.Stderr, "tree-search: %d rollouts in %s (%.0f rollouts/s), %d order nodes, %d chaos nodes\n",
		*flagRollouts, searchElapsed, float64(*flagRollouts)/searchElapsed.Seconds(), stats.OrderNodes, stats.ChaosNodes)
}

// runCompetition pits the two configured agents against each other directly,
// rather than scoring them in isolation: Entropy is adversarial between its
// two roles, so a meaningful comparison needs each config to actually play
// Order against the other's Chaos. Each round plays two games with roles
// swapped, so both configs get a turn at each role against the same
// opponent. The two games of a round use different referee seeds, so their
// draw sequences differ.
func runCompetition(ctx context.Context) {
	var totalValue1 float64
	wins1, wins2, draws := 0, 0, 0
	for g := 0; g < *flagGames; g++ {
		seed := uint64(g*8 + 1)

		order1 := must.M1(agent.New(*flagAIConfig, seed, seed+1))
		chaos2 := must.M1(agent.New(*flagAIConfig2, seed+2, seed+3))
		scoreOrder1 := playHeadToHead(ctx, order1, chaos2, seed+7919)

		order2 := must.M1(agent.New(*flagAIConfig2, seed+4, seed+5))
		chaos1 := must.M1(agent.New(*flagAIConfig, seed+6, seed+7))
		scoreOrder2 := playHeadToHead(ctx, order2, chaos1, seed+7927)

		// config1's net value this round: how high it scored as Order, less
		// how high it let the score go as Chaos (where low is its goal).
		value1 := float64(scoreOrder1 - scoreOrder2)
		totalValue1 += value1
		switch {
		case value1 > 0:
			wins1++
		case value1 < 0:
			wins2++
		default:
			draws++
		}
		fmt.Fprintf(os.Stderr, "game %d: %s as Order vs %s as Chaos = %d; %s as Order vs %s as Chaos = %d\n",
			g, *flagAIConfig, *flagAIConfig2, scoreOrder1, *flagAIConfig2, *flagAIConfig, scoreOrder2)
	}
	fmt.Fprintf(os.Stderr, "competition: %d rounds -- %q won %d, %q won %d, %d draws, average net value to %q: %.2f\n",
		*flagGames, *flagAIConfig, wins1, *flagAIConfig2, wins2, draws,
		*flagAIConfig, totalValue1/float64(*flagGames))
}

// playHeadToHead drives orderAgent and chaosAgent through one shared game:
// a local referee pool draws each colour, chaosAgent decides where to place
// it, and both agents register every move so their internal board/pool
// state (and any retained search tree) stays in lockstep. Returns the final
// board score, from the Order side's perspective (high is good for Order).
func playHeadToHead(ctx context.Context, orderAgent, chaosAgent agent.Agent, refereeSeed uint64) int {
	refereeRNG := rand.New(rand.NewPCG(refereeSeed, refereeSeed^0x9e3779b97f4a7c15))
	referee := pool.New()
	for placed := 0; placed < game.BoardArea; placed++ {
		colour := must.M1(referee.Draw(refereeRNG))
		move := must.M1(chaosAgent.SuggestChaosMove(ctx, colour))
		must.M(chaosAgent.RegisterChaosMove(move))
		must.M(orderAgent.RegisterChaosMove(move))

		if placed == game.BoardArea-1 {
			break // board just filled; no Order turn follows the last placement.
		}
		orderMove := must.M1(orderAgent.SuggestOrderMove(ctx))
		must.M(orderAgent.RegisterOrderMove(orderMove))
		must.M(chaosAgent.RegisterOrderMove(orderMove))
	}
	return orderAgent.Score()
}

// zobristOf reconstructs the hash of an already-built board by replaying its
// occupied cells; XOR-based hashing makes the order of replay irrelevant.
func zobristOf(board *game.BoardState) zobrist.Hash {
	h := zobrist.New()
	for pos := game.Pos(0); pos < game.BoardArea; pos++ {
		if c := board.Cell(pos); c != game.Empty {
			h = h.AfterPlace(c, pos)
		}
	}
	return h
}

// Command ludo-selfplay runs a batch of self-play games through the
// parallel-MCTS engine and writes one trajectory file per game (spec
// §6.3), grounded on cmd/chessplay-uci/main.go's flag-parsing and
// optional CPU-profile-via-env-var wiring.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"time"

	"github.com/ludomcts/selfplay/internal/actor"
	"github.com/ludomcts/selfplay/internal/config"
	"github.com/ludomcts/selfplay/internal/netvalue"
	"github.com/ludomcts/selfplay/internal/statsstore"
)

var (
	configPath = flag.String("config", "", "path to a YAML run config (defaults to the built-in preset)")
	games      = flag.Int("games", 0, "override config.games (0 = use config value)")
	seed       = flag.Uint64("seed", 0, "base RNG seed for this run (0 = derive from wall clock)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *games > 0 {
		cfg.Games = *games
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = uint64(time.Now().UnixNano())
	}

	store, err := statsstore.Open(cfg.StatsDir)
	if err != nil {
		log.Fatalf("statsstore: %v", err)
	}
	defer store.Close()

	log.Printf("[ludo-selfplay] starting %d game(s), %d players, %d simulations/move, %d workers",
		cfg.Games, cfg.NPlayers, cfg.Simulations, cfg.Workers)

	won := make(map[int]int)
	for g := 0; g < cfg.Games; g++ {
		gameSeed := runSeed + uint64(g)*1_000_003
		result, err := runGame(cfg, gameSeed)
		if err != nil {
			log.Fatalf("game %d: %v", g, err)
		}

		at := time.Now()
		if err := actor.Persist(cfg, result, at); err != nil {
			log.Fatalf("game %d: persist: %v", g, err)
		}
		if err := actor.RecordStats(store, result); err != nil {
			log.Fatalf("game %d: record stats: %v", g, err)
		}

		won[result.Winner]++
		log.Printf("[ludo-selfplay] game %d/%d: winner=%d plies=%d queue_drops=%d duration=%s -> %s",
			g+1, cfg.Games, result.Winner, result.Plies, result.QueueDrops, result.Duration, result.TrajectoryPath)
	}

	fmt.Println("wins by player:")
	for p := 0; p < cfg.NPlayers; p++ {
		fmt.Printf("  player %d: %d\n", p, won[p])
	}
}

func loadConfig(path string) (*config.RunConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.FromYaml(path)
}

// runGame builds a shuffled GameConfig and a deterministic reference
// evaluator per player, then drives one self-play game to completion.
// The MaterialHeuristicEvaluator stands in for the out-of-scope value
// network (spec §1, §6.2); swapping it for an RPC-backed Evaluator is
// the integration point the surrounding training system owns.
func runGame(cfg *config.RunConfig, seed uint64) (*actor.Result, error) {
	rng := rand.New(rand.NewPCG(seed, 1))
	gameCfg, err := actor.NewGameConfigShuffled(cfg.NPlayers, rng)
	if err != nil {
		return nil, err
	}

	evaluators := make([]netvalue.Evaluator, cfg.NPlayers)
	for p := range evaluators {
		evaluators[p] = netvalue.MaterialHeuristicEvaluator{}
	}

	return actor.PlayGame(cfg, gameCfg, evaluators, seed)
}

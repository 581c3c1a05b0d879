// Package statsstore persists aggregate self-play run counters in
// BadgerDB, the same storage engine and transaction idiom the teacher
// uses for UserPreferences/GameStats (internal/storage/storage.go),
// repurposed here for self-play RunStats instead of chess game records.
package statsstore

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyRunStats = "run_stats"

// RunStats aggregates counters across every game of a self-play run,
// grounded on internal/storage/storage.go's GameStats shape but keyed to
// per-player win counts instead of chess win/loss/draw and difficulty
// buckets.
type RunStats struct {
	GamesPlayed    int            `json:"games_played"`
	WinsByPlayer   map[int]int    `json:"wins_by_player"`
	TotalPlies     int            `json:"total_plies"`
	TotalQueueDrop int            `json:"total_queue_drops"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LastGameAt     time.Time      `json:"last_game_at"`
}

// NewRunStats returns empty run statistics, matching
// internal/storage/storage.go's NewGameStats constructor shape.
func NewRunStats() *RunStats {
	return &RunStats{WinsByPlayer: make(map[int]int)}
}

// GameOutcome is the information RecordGame needs about one completed
// self-play game (spec §4.14 "record winner").
type GameOutcome struct {
	Winner     int
	Plies      int
	QueueDrops int
	Duration   time.Duration
}

// Store wraps BadgerDB for persistent run-statistics storage, grounded
// directly on internal/storage/storage.go's Storage type (same
// badger.DefaultOptions(dir) + opts.Logger = nil + db.Update/db.View
// transaction pattern).
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) the badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads run statistics, returning an empty RunStats if none have
// been recorded yet.
func (s *Store) Load() (*RunStats, error) {
	stats := NewRunStats()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyRunStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	return stats, err
}

func (s *Store) save(stats *RunStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyRunStats), data)
	})
}

// RecordGame folds one completed game's outcome into the persisted run
// statistics (spec §4.14 "record winner, yields self-play trajectories"),
// mirroring internal/storage/storage.go's RecordGame load-mutate-save
// shape.
func (s *Store) RecordGame(outcome GameOutcome) error {
	stats, err := s.Load()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += outcome.Plies
	stats.TotalQueueDrop += outcome.QueueDrops
	stats.TotalPlayTime += outcome.Duration
	stats.LastGameAt = time.Now()
	if outcome.Winner >= 0 {
		stats.WinsByPlayer[outcome.Winner]++
	}

	return s.save(stats)
}

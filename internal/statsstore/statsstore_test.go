package statsstore

import (
	"testing"
	"time"
)

func TestRecordGameAggregates(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	outcomes := []GameOutcome{
		{Winner: 0, Plies: 40, QueueDrops: 2, Duration: time.Second},
		{Winner: 1, Plies: 55, QueueDrops: 0, Duration: 2 * time.Second},
		{Winner: 0, Plies: 30, QueueDrops: 1, Duration: time.Second / 2},
	}
	for _, o := range outcomes {
		if err := store.RecordGame(o); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 3 {
		t.Errorf("games played = %d, want 3", stats.GamesPlayed)
	}
	if stats.WinsByPlayer[0] != 2 || stats.WinsByPlayer[1] != 1 {
		t.Errorf("wins by player = %+v, want {0:2, 1:1}", stats.WinsByPlayer)
	}
	if stats.TotalPlies != 125 {
		t.Errorf("total plies = %d, want 125", stats.TotalPlies)
	}
	if stats.TotalQueueDrop != 3 {
		t.Errorf("total queue drops = %d, want 3", stats.TotalQueueDrop)
	}
}

func TestLoadEmptyStoreReturnsZeroValue(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stats, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 0 || len(stats.WinsByPlayer) != 0 {
		t.Fatalf("expected a zero-value RunStats, got %+v", stats)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RecordGame(GameOutcome{Winner: 2, Plies: 10}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	stats, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 1 || stats.WinsByPlayer[2] != 1 {
		t.Fatalf("stats did not persist across reopen: %+v", stats)
	}
}

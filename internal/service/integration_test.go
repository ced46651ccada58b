package service

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"flashdeck/internal/cache"
	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/events"
	"flashdeck/internal/repository"
)

// newIntegrationService wires the real stores, hub and cache over SQLite
func newIntegrationService(t *testing.T) (*PracticeService, *cache.KnownCards, *database.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	hub := events.NewHub()
	progress := repository.NewProgressRepository(db, hub)
	known := cache.NewKnownCards(progress, hub, 16, time.Minute)
	t.Cleanup(known.Close)

	cfg := &config.Config{SessionSize: 20, PracticeDirection: "front"}
	svc := NewPracticeService(repository.NewCardRepository(db), progress, known, cfg, zap.NewNop())

	return svc, known, db
}

func seedDeck(t *testing.T, db *database.DB, n int) (int64, []int64) {
	t.Helper()

	deckID, err := db.ExecReturningID("INSERT INTO decks (name) VALUES (?)", t.Name())
	if err != nil {
		t.Fatalf("Failed to insert deck: %v", err)
	}

	cardIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		cardID, err := db.ExecReturningID(
			"INSERT INTO cards (deck_id, front, back, position) VALUES (?, ?, ?, ?)",
			deckID, "front", "back", i,
		)
		if err != nil {
			t.Fatalf("Failed to insert card: %v", err)
		}
		cardIDs = append(cardIDs, cardID)
	}

	return deckID, cardIDs
}

func TestPracticeRoundTrip(t *testing.T) {
	svc, known, db := newIntegrationService(t)
	deckID, cardIDs := seedDeck(t, db, 5)

	sess, err := svc.Prepare(deckID, 3, false)
	if err != nil {
		t.Fatalf("Prepare(): %v", err)
	}
	if sess.TotalCards() != 3 {
		t.Fatalf("TotalCards() = %d, want 3", sess.TotalCards())
	}

	for _, outcome := range []Outcome{OutcomeKnow, OutcomeHard, OutcomeKnow} {
		if err := sess.Reveal(); err != nil {
			t.Fatalf("Reveal(): %v", err)
		}
		if err := sess.Label(outcome); err != nil {
			t.Fatalf("Label(%s): %v", outcome, err)
		}
	}

	summary, failed, err := svc.Complete(sess)
	if err != nil {
		t.Fatalf("Complete(): %v", err)
	}
	if summary.Correct != 2 || summary.Hard != 1 {
		t.Errorf("summary = %+v, want Correct=2 Hard=1", summary)
	}

	// read-after-write through the cache: no staleness window
	knownSet, err := known.Get(deckID)
	if err != nil {
		t.Fatalf("cache Get(): %v", err)
	}
	for _, id := range []int64{cardIDs[0], cardIDs[2]} {
		if _, ok := knownSet[id]; !ok {
			t.Errorf("card %d missing from cached known set after Complete", id)
		}
	}
	if len(knownSet) != 2 {
		t.Errorf("len(knownSet) = %d, want 2", len(knownSet))
	}

	stats, err := svc.DailyStats(deckID)
	if err != nil {
		t.Fatalf("DailyStats(): %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Viewed != 3 || stats[0].Correct != 2 || stats[0].Hard != 1 || stats[0].Sessions != 1 {
		t.Errorf("today's record = %+v, want viewed=3 correct=2 hard=1 sessions=1", stats[0])
	}

	// the failed card feeds a repeat session; the known ones stay excluded
	repeat, err := svc.PrepareRepeat(deckID, failed)
	if err != nil {
		t.Fatalf("PrepareRepeat(): %v", err)
	}
	if repeat.TotalCards() != 1 || repeat.Cards[0].ID != cardIDs[1] {
		t.Errorf("repeat session cards = %v, want just card %d", repeat.Cards, cardIDs[1])
	}

	// a fresh full session now excludes the two known cards
	next, err := svc.Prepare(deckID, 10, false)
	if err != nil {
		t.Fatalf("Prepare(): %v", err)
	}
	if next.TotalCards() != 3 {
		t.Errorf("TotalCards() = %d, want 3 (5 cards minus 2 known)", next.TotalCards())
	}
}

func TestResetRestoresFullDeck(t *testing.T) {
	svc, known, db := newIntegrationService(t)
	deckID, cardIDs := seedDeck(t, db, 3)

	if err := svc.MarkKnown(deckID, cardIDs[0]); err != nil {
		t.Fatalf("MarkKnown(): %v", err)
	}

	count, err := svc.KnownCount(deckID)
	if err != nil {
		t.Fatalf("KnownCount(): %v", err)
	}
	if count != 1 {
		t.Fatalf("KnownCount() = %d, want 1", count)
	}

	if err := svc.ResetDeckProgress(deckID); err != nil {
		t.Fatalf("ResetDeckProgress(): %v", err)
	}

	// the cache saw the reset synchronously
	knownSet, err := known.Get(deckID)
	if err != nil {
		t.Fatalf("cache Get(): %v", err)
	}
	if len(knownSet) != 0 {
		t.Errorf("len(knownSet) after reset = %d, want 0", len(knownSet))
	}

	stats, err := svc.DailyStats(deckID)
	if err != nil {
		t.Fatalf("DailyStats(): %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("len(stats) after reset = %d, want 0", len(stats))
	}

	sess, err := svc.Prepare(deckID, 10, false)
	if err != nil {
		t.Fatalf("Prepare(): %v", err)
	}
	if sess.TotalCards() != 3 {
		t.Errorf("TotalCards() = %d, want 3 (full deck again)", sess.TotalCards())
	}
}

func TestDeckOverviewsAcrossDecks(t *testing.T) {
	svc, _, db := newIntegrationService(t)
	deckA, _ := seedDeck(t, db, 2)
	deckB, _ := seedDeck(t, db, 2)

	sess, err := svc.Prepare(deckA, 2, false)
	if err != nil {
		t.Fatalf("Prepare(): %v", err)
	}
	for sess.State() != StateComplete {
		if err := sess.Reveal(); err != nil {
			t.Fatalf("Reveal(): %v", err)
		}
		if err := sess.Label(OutcomeKnow); err != nil {
			t.Fatalf("Label(): %v", err)
		}
	}
	if _, _, err := svc.Complete(sess); err != nil {
		t.Fatalf("Complete(): %v", err)
	}

	overviews, err := svc.DeckOverviews([]int64{deckA, deckB})
	if err != nil {
		t.Fatalf("DeckOverviews(): %v", err)
	}
	if len(overviews) != 2 {
		t.Fatalf("len(overviews) = %d, want 2", len(overviews))
	}

	if overviews[0].Today.Viewed != 2 || overviews[0].Today.Sessions != 1 {
		t.Errorf("deck A today = %+v, want viewed=2 sessions=1", overviews[0].Today)
	}
	if overviews[0].AllTime != overviews[0].Today {
		t.Errorf("deck A all-time %+v differs from today %+v on its first day",
			overviews[0].AllTime, overviews[0].Today)
	}

	// deck B is idle: present, all zeros
	if overviews[1].DeckID != deckB {
		t.Fatalf("overviews[1].DeckID = %d, want %d", overviews[1].DeckID, deckB)
	}
	zero := overviews[1].AllTime
	if zero.Sessions != 0 || zero.Viewed != 0 {
		t.Errorf("idle deck rollup = %+v, want zeros", zero)
	}
}

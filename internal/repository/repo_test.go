package repository

import (
	"path/filepath"
	"testing"

	"flashdeck/internal/database"
	"flashdeck/internal/events"
)

// newTestDB opens a throwaway SQLite database with the real schema applied
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database-backed test in short mode")
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

	return db
}

func newTestProgressRepo(t *testing.T) (*ProgressRepository, *events.Hub) {
	t.Helper()
	hub := events.NewHub()
	return NewProgressRepository(newTestDB(t), hub), hub
}

// seedDeck inserts a deck with n cards and returns the deck id and card ids
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

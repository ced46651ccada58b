package database

import (
	"strings"
	"testing"
)

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "single placeholder",
			query:    "SELECT * FROM decks WHERE id = ?",
			expected: "SELECT * FROM decks WHERE id = $1",
		},
		{
			name:     "multiple placeholders numbered in order",
			query:    "INSERT INTO known_cards (deck_id, card_id) VALUES (?, ?)",
			expected: "INSERT INTO known_cards (deck_id, card_id) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rewritePlaceholdersToNumbered(tt.query)
			if result != tt.expected {
				t.Errorf("rewritePlaceholdersToNumbered() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDialectQueries(t *testing.T) {
	dialects := []struct {
		name    string
		dialect Dialect
		// fragment that proves the statement is a real single-statement upsert
		upsertMarker string
		insertMarker string
	}{
		{
			name:         "sqlite",
			dialect:      NewSQLiteDialect(),
			upsertMarker: "ON CONFLICT(deck_id, day) DO UPDATE SET",
			insertMarker: "INSERT OR IGNORE",
		},
		{
			name:         "postgres",
			dialect:      NewPostgresDialect(),
			upsertMarker: "ON CONFLICT (deck_id, day) DO UPDATE SET",
			insertMarker: "DO NOTHING",
		},
		{
			name:         "mysql",
			dialect:      NewMySQLDialect(),
			upsertMarker: "ON DUPLICATE KEY UPDATE",
			insertMarker: "INSERT IGNORE",
		},
	}

	for _, tt := range dialects {
		t.Run(tt.name, func(t *testing.T) {
			upsert := tt.dialect.DailyStatsUpsertQuery()
			if !strings.Contains(upsert, tt.upsertMarker) {
				t.Errorf("DailyStatsUpsertQuery() missing %q", tt.upsertMarker)
			}
			if got := strings.Count(upsert, "?"); got != 9 {
				t.Errorf("DailyStatsUpsertQuery() has %d placeholders, want 9", got)
			}

			insert := tt.dialect.KnownCardInsertQuery()
			if !strings.Contains(insert, tt.insertMarker) {
				t.Errorf("KnownCardInsertQuery() missing %q", tt.insertMarker)
			}
			if got := strings.Count(insert, "?"); got != 2 {
				t.Errorf("KnownCardInsertQuery() has %d placeholders, want 2", got)
			}
		})
	}
}

func TestPostgresRewritesUpsert(t *testing.T) {
	d := NewPostgresDialect()
	rewritten := d.RewriteQuery(d.DailyStatsUpsertQuery())

	if strings.Contains(rewritten, "?") {
		t.Error("rewritten query still contains ? placeholders")
	}
	if !strings.Contains(rewritten, "$9") {
		t.Error("rewritten query missing $9 placeholder")
	}
}

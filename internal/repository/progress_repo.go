package repository

import (
	"fmt"
	"strings"
	"time"

	"flashdeck/internal/database"
	"flashdeck/internal/events"
	"flashdeck/internal/models"
)

// ProgressRepository owns the known-cards set and the daily stats records.
// Every successful mutation publishes the deck id on the hub before the
// call returns, so subscribed caches evict within the same call stack.
type ProgressRepository struct {
	db  *database.DB
	hub *events.Hub
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB, hub *events.Hub) *ProgressRepository {
	return &ProgressRepository{db: db, hub: hub}
}

// MarkKnown records a card as known. Calling it twice for the same pair
// has the same effect as calling it once.
func (r *ProgressRepository) MarkKnown(deckID, cardID int64) error {
	if deckID <= 0 {
		return ErrInvalidDeckID
	}
	if cardID <= 0 {
		return ErrInvalidCardID
	}

	_, err := r.db.Exec(r.db.Dialect.KnownCardInsertQuery(), deckID, cardID)
	if err != nil {
		return fmt.Errorf("failed to mark card known: %w", err)
	}

	r.hub.Publish(deckID)
	return nil
}

// UnmarkKnown removes a card from the known set. Removing an absent pair is a no-op.
func (r *ProgressRepository) UnmarkKnown(deckID, cardID int64) error {
	if deckID <= 0 {
		return ErrInvalidDeckID
	}
	if cardID <= 0 {
		return ErrInvalidCardID
	}

	query := "DELETE FROM known_cards WHERE deck_id = ? AND card_id = ?"
	if _, err := r.db.Exec(query, deckID, cardID); err != nil {
		return fmt.Errorf("failed to unmark card known: %w", err)
	}

	r.hub.Publish(deckID)
	return nil
}

// GetKnownCardIDs retrieves the set of known card ids for a deck
func (r *ProgressRepository) GetKnownCardIDs(deckID int64) (map[int64]struct{}, error) {
	if deckID <= 0 {
		return nil, ErrInvalidDeckID
	}

	query := "SELECT card_id FROM known_cards WHERE deck_id = ?"
	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get known cards: %w", err)
	}
	defer rows.Close()

	known := make(map[int64]struct{})
	for rows.Next() {
		var cardID int64
		if err := rows.Scan(&cardID); err != nil {
			return nil, err
		}
		known[cardID] = struct{}{}
	}

	return known, rows.Err()
}

// GetKnownCardIDsBatch retrieves known card sets for several decks in one query.
// Decks with no known cards are omitted from the result map.
func (r *ProgressRepository) GetKnownCardIDsBatch(deckIDs []int64) (map[int64]map[int64]struct{}, error) {
	result := make(map[int64]map[int64]struct{})
	if len(deckIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(
		"SELECT deck_id, card_id FROM known_cards WHERE deck_id IN (%s)",
		inPlaceholders(len(deckIDs)),
	)

	rows, err := r.db.Query(query, int64Args(deckIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get known cards batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var deckID, cardID int64
		if err := rows.Scan(&deckID, &cardID); err != nil {
			return nil, err
		}
		if result[deckID] == nil {
			result[deckID] = make(map[int64]struct{})
		}
		result[deckID][cardID] = struct{}{}
	}

	return result, rows.Err()
}

// ResetDeckProgress deletes all known-card rows and all daily-stats rows
// for a deck in one transaction. Irreversible.
func (r *ProgressRepository) ResetDeckProgress(deckID int64) error {
	if deckID <= 0 {
		return ErrInvalidDeckID
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM known_cards WHERE deck_id = ?", deckID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete known cards: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM daily_stats WHERE deck_id = ?", deckID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete daily stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	r.hub.Publish(deckID)
	return nil
}

// AccumulateDailyStats adds the delta into the (deck, day) record, creating
// it if absent. The upsert is a single statement, safe under concurrent
// sessions touching the same deck and day.
func (r *ProgressRepository) AccumulateDailyStats(deckID int64, day string, delta models.StatsDelta) error {
	if deckID <= 0 {
		return ErrInvalidDeckID
	}

	err := execDailyStatsUpsert(r.db, deckID, day, delta)
	if err != nil {
		return fmt.Errorf("failed to accumulate daily stats: %w", err)
	}
	return nil
}

// RecordCompletion flushes one finished session as a single atomic unit:
// the daily-stats upsert and every known-card insert commit together or
// not at all.
func (r *ProgressRepository) RecordCompletion(deckID int64, day string, delta models.StatsDelta, knownCardIDs []int64) error {
	if deckID <= 0 {
		return ErrInvalidDeckID
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin completion transaction: %w", err)
	}

	if err := execDailyStatsUpsert(tx, deckID, day, delta); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to accumulate daily stats: %w", err)
	}

	insertQuery := r.db.Dialect.KnownCardInsertQuery()
	for _, cardID := range knownCardIDs {
		if _, err := tx.Exec(insertQuery, deckID, cardID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to mark card %d known: %w", cardID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}

	r.hub.Publish(deckID)
	return nil
}

// GetDailyStats retrieves all daily records for a deck, ascending by date
func (r *ProgressRepository) GetDailyStats(deckID int64) ([]models.DailyStats, error) {
	if deckID <= 0 {
		return nil, ErrInvalidDeckID
	}

	query := `
		SELECT deck_id, day, sessions, viewed, correct, repeat_count, hard_count, duration_ms, answer_delay_ms
		FROM daily_stats
		WHERE deck_id = ?
		ORDER BY day ASC
	`

	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer rows.Close()

	var stats []models.DailyStats
	for rows.Next() {
		var rec models.DailyStats
		var durationMs, answerDelayMs int64
		err := rows.Scan(
			&rec.DeckID,
			&rec.Day,
			&rec.Sessions,
			&rec.Viewed,
			&rec.Correct,
			&rec.Repeat,
			&rec.Hard,
			&durationMs,
			&answerDelayMs,
		)
		if err != nil {
			return nil, err
		}
		rec.Day = strings.TrimSpace(rec.Day)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.AnswerDelay = time.Duration(answerDelayMs) * time.Millisecond
		stats = append(stats, rec)
	}

	return stats, rows.Err()
}

// GetAggregatesForDecks computes all-time and today rollups for several decks
// in one query. Decks with no activity appear with all-zero rollups, in the
// order the ids were given.
func (r *ProgressRepository) GetAggregatesForDecks(deckIDs []int64, today string) ([]models.DeckAggregates, error) {
	byDeck := make(map[int64]models.DeckAggregates, len(deckIDs))

	if len(deckIDs) > 0 {
		query := fmt.Sprintf(`
			SELECT deck_id,
			       SUM(sessions), SUM(viewed), SUM(correct), SUM(repeat_count), SUM(hard_count),
			       SUM(CASE WHEN day = ? THEN sessions ELSE 0 END),
			       SUM(CASE WHEN day = ? THEN viewed ELSE 0 END),
			       SUM(CASE WHEN day = ? THEN correct ELSE 0 END),
			       SUM(CASE WHEN day = ? THEN repeat_count ELSE 0 END),
			       SUM(CASE WHEN day = ? THEN hard_count ELSE 0 END)
			FROM daily_stats
			WHERE deck_id IN (%s)
			GROUP BY deck_id
		`, inPlaceholders(len(deckIDs)))

		args := []interface{}{today, today, today, today, today}
		args = append(args, int64Args(deckIDs)...)

		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to get deck aggregates: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var agg models.DeckAggregates
			err := rows.Scan(
				&agg.DeckID,
				&agg.AllTime.Sessions, &agg.AllTime.Viewed, &agg.AllTime.Correct, &agg.AllTime.Repeat, &agg.AllTime.Hard,
				&agg.Today.Sessions, &agg.Today.Viewed, &agg.Today.Correct, &agg.Today.Repeat, &agg.Today.Hard,
			)
			if err != nil {
				return nil, err
			}
			byDeck[agg.DeckID] = agg
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	// Zero-activity decks still get an entry, unlike the known-cards batch
	result := make([]models.DeckAggregates, 0, len(deckIDs))
	for _, id := range deckIDs {
		agg, ok := byDeck[id]
		if !ok {
			agg = models.DeckAggregates{DeckID: id}
		}
		result = append(result, agg)
	}

	return result, nil
}

func execDailyStatsUpsert(db database.DBTX, deckID int64, day string, delta models.StatsDelta) error {
	_, err := db.Exec(db.GetDialect().DailyStatsUpsertQuery(),
		deckID,
		day,
		delta.Sessions,
		delta.Viewed,
		delta.Correct,
		delta.Repeat,
		delta.Hard,
		delta.Duration.Milliseconds(),
		delta.AnswerDelay.Milliseconds(),
	)
	return err
}

// inPlaceholders builds "?, ?, ..." for an IN clause of n values
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

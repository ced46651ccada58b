package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flashdeck/internal/database"
	"flashdeck/internal/models"
)

// ErrInvalidDeckID is returned when a caller passes a non-positive deck id
var ErrInvalidDeckID = errors.New("invalid deck id")

// ErrInvalidCardID is returned when a caller passes a non-positive card id
var ErrInvalidCardID = errors.New("invalid card id")

const cardColumns = "id, deck_id, front, back, example, media_ref, position, created_at"

// CardFilter holds composable predicates for card queries.
// Zero values mean "no constraint"; set predicates are combined with AND.
type CardFilter struct {
	// Search matches front or back text (substring, case handled by collation)
	Search string
	// Known restricts to cards that are (true) or are not (false) marked known
	Known *bool
}

// CardRepository provides read access to a deck's cards.
// This subsystem never mutates card content.
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

// ListCardsForDeck retrieves all cards of a deck in stable deck order
func (r *CardRepository) ListCardsForDeck(deckID int64) ([]models.Card, error) {
	if deckID <= 0 {
		return nil, ErrInvalidDeckID
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM cards
		WHERE deck_id = ?
		ORDER BY position ASC, id ASC
	`, cardColumns)

	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// ListFiltered retrieves a deck's cards matching the given filter predicates
func (r *CardRepository) ListFiltered(deckID int64, filter CardFilter) ([]models.Card, error) {
	if deckID <= 0 {
		return nil, ErrInvalidDeckID
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM cards WHERE deck_id = ?", cardColumns)
	args := []interface{}{deckID}

	if filter.Search != "" {
		sb.WriteString(" AND (front LIKE ? OR back LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if filter.Known != nil {
		exists := "EXISTS"
		if !*filter.Known {
			exists = "NOT EXISTS"
		}
		fmt.Fprintf(&sb, " AND %s (SELECT 1 FROM known_cards k WHERE k.deck_id = cards.deck_id AND k.card_id = cards.id)", exists)
	}

	sb.WriteString(" ORDER BY position ASC, id ASC")

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list filtered cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(
			&card.ID,
			&card.DeckID,
			&card.Front,
			&card.Back,
			&card.Example,
			&card.MediaRef,
			&card.Position,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

package repository

import (
	"errors"
	"testing"

	"flashdeck/internal/events"
)

func TestListCardsForDeckStableOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewCardRepository(db)

	deckID, cardIDs := seedDeck(t, db, 4)

	cards, err := repo.ListCardsForDeck(deckID)
	if err != nil {
		t.Fatalf("ListCardsForDeck(): %v", err)
	}
	if len(cards) != 4 {
		t.Fatalf("len(cards) = %d, want 4", len(cards))
	}
	for i, card := range cards {
		if card.ID != cardIDs[i] {
			t.Errorf("cards[%d].ID = %d, want %d", i, card.ID, cardIDs[i])
		}
		if card.Position != i {
			t.Errorf("cards[%d].Position = %d, want %d", i, card.Position, i)
		}
	}
}

func TestListCardsForDeckInvalidID(t *testing.T) {
	repo := NewCardRepository(newTestDB(t))
	if _, err := repo.ListCardsForDeck(0); !errors.Is(err, ErrInvalidDeckID) {
		t.Errorf("ListCardsForDeck(0) = %v, want ErrInvalidDeckID", err)
	}
}

func TestListFiltered(t *testing.T) {
	db := newTestDB(t)
	repo := NewCardRepository(db)
	progress := NewProgressRepository(db, events.NewHub())

	deckID, err := db.ExecReturningID("INSERT INTO decks (name) VALUES (?)", t.Name())
	if err != nil {
		t.Fatalf("Failed to insert deck: %v", err)
	}

	words := []struct {
		front, back string
	}{
		{"der Hund", "the dog"},
		{"die Katze", "the cat"},
		{"das Haus", "the house"},
	}
	cardIDs := make([]int64, 0, len(words))
	for i, w := range words {
		id, err := db.ExecReturningID(
			"INSERT INTO cards (deck_id, front, back, position) VALUES (?, ?, ?, ?)",
			deckID, w.front, w.back, i,
		)
		if err != nil {
			t.Fatalf("Failed to insert card: %v", err)
		}
		cardIDs = append(cardIDs, id)
	}

	if err := progress.MarkKnown(deckID, cardIDs[0]); err != nil {
		t.Fatalf("MarkKnown(): %v", err)
	}

	known := true
	notKnown := false

	tests := []struct {
		name   string
		filter CardFilter
		want   []string
	}{
		{
			name:   "no predicates returns all",
			filter: CardFilter{},
			want:   []string{"der Hund", "die Katze", "das Haus"},
		},
		{
			name:   "search matches front",
			filter: CardFilter{Search: "Katze"},
			want:   []string{"die Katze"},
		},
		{
			name:   "search matches back",
			filter: CardFilter{Search: "house"},
			want:   []string{"das Haus"},
		},
		{
			name:   "known only",
			filter: CardFilter{Known: &known},
			want:   []string{"der Hund"},
		},
		{
			name:   "not known only",
			filter: CardFilter{Known: &notKnown},
			want:   []string{"die Katze", "das Haus"},
		},
		{
			name:   "search and known combine with AND",
			filter: CardFilter{Search: "d", Known: &notKnown},
			want:   []string{"die Katze", "das Haus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := repo.ListFiltered(deckID, tt.filter)
			if err != nil {
				t.Fatalf("ListFiltered(): %v", err)
			}
			if len(cards) != len(tt.want) {
				t.Fatalf("len(cards) = %d, want %d", len(cards), len(tt.want))
			}
			for i, card := range cards {
				if card.Front != tt.want[i] {
					t.Errorf("cards[%d].Front = %s, want %s", i, card.Front, tt.want[i])
				}
			}
		})
	}
}

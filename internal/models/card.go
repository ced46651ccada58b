package models

import "time"

// Card represents a single flashcard in a deck
type Card struct {
	ID        int64
	DeckID    int64
	Front     string
	Back      string
	Example   string
	MediaRef  string
	Position  int
	CreatedAt time.Time
}

// Deck represents a named collection of cards
type Deck struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeckWithCards combines a deck with its cards
type DeckWithCards struct {
	Deck  Deck
	Cards []Card
}

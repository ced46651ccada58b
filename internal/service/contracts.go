package service

import "flashdeck/internal/models"

// CardSource is the read-only supplier of a deck's cards
type CardSource interface {
	ListCardsForDeck(deckID int64) ([]models.Card, error)
}

// ProgressStore is the durable record of known cards and daily stats
type ProgressStore interface {
	MarkKnown(deckID, cardID int64) error
	UnmarkKnown(deckID, cardID int64) error
	ResetDeckProgress(deckID int64) error
	RecordCompletion(deckID int64, day string, delta models.StatsDelta, knownCardIDs []int64) error
	GetDailyStats(deckID int64) ([]models.DailyStats, error)
	GetAggregatesForDecks(deckIDs []int64, today string) ([]models.DeckAggregates, error)
}

// KnownCardReader serves known-card sets, normally through the cache
type KnownCardReader interface {
	Get(deckID int64) (map[int64]struct{}, error)
}

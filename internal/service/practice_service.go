package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"flashdeck/internal/config"
	"flashdeck/internal/models"
	"flashdeck/internal/repository"
)

const dateLayout = "2006-01-02"

// ErrNilSession is returned when Complete is called without a session
var ErrNilSession = errors.New("nil session")

// PracticeService prepares practice sessions, flushes their results into
// the progress store, and answers deck-level statistics queries.
type PracticeService struct {
	cards    CardSource
	progress ProgressStore
	known    KnownCardReader
	cfg      *config.Config
	log      *zap.Logger

	now func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(cards CardSource, progress ProgressStore, known KnownCardReader, cfg *config.Config, log *zap.Logger) *PracticeService {
	return &PracticeService{
		cards:    cards,
		progress: progress,
		known:    known,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Prepare builds the working set for one practice run: all of the deck's
// not-known cards, truncated to requestedCount. requestedCount is clamped
// to [1, available]; an empty not-known set yields an already-complete
// session, which callers should render as "all caught up".
func (s *PracticeService) Prepare(deckID int64, requestedCount int, randomOrder bool) (*Session, error) {
	if deckID <= 0 {
		return nil, repository.ErrInvalidDeckID
	}

	notKnown, err := s.notKnownCards(deckID)
	if err != nil {
		return nil, err
	}

	if len(notKnown) == 0 {
		return newSession(deckID, s.cfg.PracticeDirection, nil), nil
	}

	count := requestedCount
	if count < 1 {
		count = 1
	}
	if count > len(notKnown) {
		count = len(notKnown)
	}

	if randomOrder {
		rand.Shuffle(len(notKnown), func(i, j int) {
			notKnown[i], notKnown[j] = notKnown[j], notKnown[i]
		})
	}

	sess := newSession(deckID, s.cfg.PracticeDirection, notKnown[:count])
	s.log.Debug("prepared practice session",
		zap.String("session_id", sess.ID),
		zap.Int64("deck_id", deckID),
		zap.Int("cards", count),
		zap.Bool("random", randomOrder),
	)
	return sess, nil
}

// PrepareDefault builds a session using the configured size and order
func (s *PracticeService) PrepareDefault(deckID int64) (*Session, error) {
	return s.Prepare(deckID, s.cfg.SessionSize, s.cfg.RandomOrder)
}

// PrepareRepeat builds a follow-up session from the failed cards of a
// previous run. Each id is re-validated against the current known set; a
// card marked known in the meantime is dropped. The remainder is shuffled.
func (s *PracticeService) PrepareRepeat(deckID int64, failedCardIDs []int64) (*Session, error) {
	if deckID <= 0 {
		return nil, repository.ErrInvalidDeckID
	}

	notKnown, err := s.notKnownCards(deckID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]struct{}, len(failedCardIDs))
	for _, id := range failedCardIDs {
		wanted[id] = struct{}{}
	}

	var cards []models.Card
	for _, card := range notKnown {
		if _, ok := wanted[card.ID]; ok {
			cards = append(cards, card)
		}
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return newSession(deckID, s.cfg.PracticeDirection, cards), nil
}

// Complete flushes a session's accumulated counters and known-card delta
// into the progress store as one atomic unit, then derives the summary.
// On store failure nothing was recorded: no summary and no repeat list.
func (s *PracticeService) Complete(sess *Session) (*models.CompletionSummary, []int64, error) {
	if sess == nil {
		return nil, nil, ErrNilSession
	}

	now := s.now()
	duration := now.Sub(sess.startedAt)
	if duration < time.Second {
		// keeps downstream averages away from division by zero
		duration = time.Second
	}

	delta := models.StatsDelta{
		Sessions:    1,
		Viewed:      sess.viewed,
		Correct:     sess.correct,
		Repeat:      sess.repeat,
		Hard:        sess.hard,
		Duration:    duration,
		AnswerDelay: sess.answerDelay,
	}

	day := now.Format(dateLayout)
	if err := s.progress.RecordCompletion(sess.DeckID, day, delta, sess.knownDelta); err != nil {
		return nil, nil, fmt.Errorf("failed to record session completion: %w", err)
	}

	divisor := sess.viewed
	if divisor < 1 {
		divisor = 1
	}

	summary := &models.CompletionSummary{
		TotalCards:       len(sess.Cards),
		Correct:          sess.correct,
		Hard:             sess.hard,
		SessionMinutes:   int(math.Round(duration.Minutes())),
		AvgAnswerSeconds: sess.answerDelay.Seconds() / float64(divisor),
	}

	failed := append([]int64(nil), sess.failed...)

	s.log.Info("practice session completed",
		zap.String("session_id", sess.ID),
		zap.Int64("deck_id", sess.DeckID),
		zap.Int("viewed", sess.viewed),
		zap.Int("correct", sess.correct),
		zap.Int("failed", len(failed)),
	)

	return summary, failed, nil
}

// MarkKnown marks a single card known outside a session (e.g., from a deck
// browser). The cache is invalidated before this returns.
func (s *PracticeService) MarkKnown(deckID, cardID int64) error {
	return s.progress.MarkKnown(deckID, cardID)
}

// UnmarkKnown returns a card to the practice pool
func (s *PracticeService) UnmarkKnown(deckID, cardID int64) error {
	return s.progress.UnmarkKnown(deckID, cardID)
}

// ResetDeckProgress wipes all known cards and stats for a deck
func (s *PracticeService) ResetDeckProgress(deckID int64) error {
	if err := s.progress.ResetDeckProgress(deckID); err != nil {
		return err
	}
	s.log.Info("deck progress reset", zap.Int64("deck_id", deckID))
	return nil
}

// DailyStats returns a deck's per-day records, ascending by date
func (s *PracticeService) DailyStats(deckID int64) ([]models.DailyStats, error) {
	return s.progress.GetDailyStats(deckID)
}

// DeckOverviews returns all-time and today rollups for each deck in one
// store round trip. Decks with no activity get all-zero rollups.
func (s *PracticeService) DeckOverviews(deckIDs []int64) ([]models.DeckAggregates, error) {
	return s.progress.GetAggregatesForDecks(deckIDs, s.now().Format(dateLayout))
}

// KnownCount reports how many cards of a deck are marked known
func (s *PracticeService) KnownCount(deckID int64) (int, error) {
	known, err := s.known.Get(deckID)
	if err != nil {
		return 0, err
	}
	return len(known), nil
}

// notKnownCards loads the deck's cards and filters out the known ones,
// preserving the card store's stable order.
func (s *PracticeService) notKnownCards(deckID int64) ([]models.Card, error) {
	allCards, err := s.cards.ListCardsForDeck(deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck cards: %w", err)
	}

	known, err := s.known.Get(deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load known cards: %w", err)
	}

	notKnown := make([]models.Card, 0, len(allCards))
	for _, card := range allCards {
		if _, ok := known[card.ID]; !ok {
			notKnown = append(notKnown, card)
		}
	}

	return notKnown, nil
}

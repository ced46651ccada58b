package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"flashdeck/internal/models"
)

// SessionState is the position of a session in its question/answer cycle
type SessionState int

const (
	StateQuestion SessionState = iota
	StateAnswer
	StateComplete
)

// Outcome is the learner's label for a revealed card
type Outcome string

const (
	OutcomeKnow   Outcome = "know"
	OutcomeHard   Outcome = "hard"
	OutcomeRepeat Outcome = "repeat"
)

var (
	// ErrSessionComplete signals a Reveal or Label call on a finished session.
	// This is a caller bug, not a retryable condition.
	ErrSessionComplete = errors.New("session already complete")

	// ErrAnswerShown signals a second Reveal without an intervening Label
	ErrAnswerShown = errors.New("answer already revealed")

	// ErrAnswerHidden signals a Label before the answer was revealed
	ErrAnswerHidden = errors.New("answer not yet revealed")

	// ErrUnknownOutcome signals a Label with an outcome outside know/hard/repeat
	ErrUnknownOutcome = errors.New("unknown outcome")
)

// Session drives one learner through a fixed, ordered run of cards.
// It is pure in-memory state: all store access happens at the session
// boundary (Prepare, Complete). A session instance is mutated by a single
// request stream; the caller serializes calls.
type Session struct {
	ID        string
	DeckID    int64
	Direction string
	Cards     []models.Card

	state           SessionState
	index           int
	startedAt       time.Time
	questionShownAt time.Time

	viewed      int
	correct     int
	repeat      int
	hard        int
	answerDelay time.Duration

	knownDelta []int64
	failed     []int64

	now func() time.Time
}

func newSession(deckID int64, direction string, cards []models.Card) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		Direction: direction,
		Cards:     cards,
		now:       time.Now,
	}

	s.startedAt = s.now()
	s.questionShownAt = s.startedAt
	if len(cards) == 0 {
		s.state = StateComplete
	}

	return s
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	return s.state
}

// CurrentCard returns the card being practiced, or false once complete
func (s *Session) CurrentCard() (models.Card, bool) {
	if s.state == StateComplete {
		return models.Card{}, false
	}
	return s.Cards[s.index], true
}

// TotalCards returns the fixed size of the working set
func (s *Session) TotalCards() int {
	return len(s.Cards)
}

// Reveal flips the current card, recording how long the learner looked at
// the question side. Valid only while the question is showing.
func (s *Session) Reveal() error {
	switch s.state {
	case StateComplete:
		return ErrSessionComplete
	case StateAnswer:
		return ErrAnswerShown
	}

	s.answerDelay += s.now().Sub(s.questionShownAt)
	s.state = StateAnswer
	return nil
}

// Label records the learner's judgement of the revealed card and advances
// to the next one. Valid only while the answer is showing.
func (s *Session) Label(outcome Outcome) error {
	switch s.state {
	case StateComplete:
		return ErrSessionComplete
	case StateQuestion:
		return ErrAnswerHidden
	}

	card := s.Cards[s.index]
	switch outcome {
	case OutcomeKnow:
		s.correct++
		s.knownDelta = append(s.knownDelta, card.ID)
	case OutcomeHard:
		s.hard++
		s.failed = append(s.failed, card.ID)
	case OutcomeRepeat:
		s.repeat++
		s.failed = append(s.failed, card.ID)
	default:
		return ErrUnknownOutcome
	}

	s.viewed++
	s.index++
	if s.index == len(s.Cards) {
		s.state = StateComplete
		return nil
	}

	s.state = StateQuestion
	s.questionShownAt = s.now()
	return nil
}

// PercentComplete reports progress as a whole percentage of cards viewed
func (s *Session) PercentComplete() int {
	if len(s.Cards) == 0 {
		return 100
	}
	return int(math.Round(float64(s.viewed) / float64(len(s.Cards)) * 100))
}

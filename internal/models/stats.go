package models

import "time"

// DailyStats is the per-deck, per-day aggregate of practice activity.
// Day is an ISO-8601 date string (YYYY-MM-DD) so records sort chronologically.
type DailyStats struct {
	DeckID      int64
	Day         string
	Sessions    int
	Viewed      int
	Correct     int
	Repeat      int
	Hard        int
	Duration    time.Duration
	AnswerDelay time.Duration
}

// StatsDelta is one session's contribution to a daily stats record
type StatsDelta struct {
	Sessions    int
	Viewed      int
	Correct     int
	Repeat      int
	Hard        int
	Duration    time.Duration
	AnswerDelay time.Duration
}

// StatsRollup is a summed view over daily stats records
type StatsRollup struct {
	Sessions int
	Viewed   int
	Correct  int
	Repeat   int
	Hard     int
}

// DeckAggregates holds all-time and today rollups for one deck
type DeckAggregates struct {
	DeckID  int64
	AllTime StatsRollup
	Today   StatsRollup
}

// CompletionSummary is the display-ready result of ending a practice session
type CompletionSummary struct {
	TotalCards       int
	Correct          int
	Hard             int
	SessionMinutes   int
	AvgAnswerSeconds float64
}

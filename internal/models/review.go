package models

import "time"

// ReviewRecord holds the scheduling state of one card for one profile.
type ReviewRecord struct {
	ID           int64      `json:"id"`
	ProfileID    int64      `json:"profile_id"`
	CardID       int64      `json:"card_id"`
	Repetitions  int        `json:"repetitions"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	NextReview   time.Time  `json:"next_review"`
	LastReviewed *time.Time `json:"last_reviewed"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsDue reports whether the record should be reviewed at now.
func (r ReviewRecord) IsDue(now time.Time) bool {
	return !now.Before(r.NextReview)
}

type ReviewHistory struct {
	ID           int64     `json:"id"`
	ReviewID     int64     `json:"review_id"`
	Rating       string    `json:"rating"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// DueQueue is the learn-page view: a bounded batch of due cards plus the
// total number due.
type DueQueue struct {
	Total int       `json:"total"`
	Cards []DueCard `json:"cards"`
}

package flashcard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vytor/mnemoflash/internal/models"
)

// Rating is the learner's self-assessed recall for a review.
type Rating string

const (
	Again Rating = "again"
	Hard  Rating = "hard"
	Good  Rating = "good"
	Easy  Rating = "easy"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MinIntervalDays   = 1
)

// Ratings lists every rating in increasing order of recall.
var Ratings = []Rating{Again, Hard, Good, Easy}

// ParseRating validates user input. It is the only way untrusted strings
// should become a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case Again, Hard, Good, Easy:
		return r, nil
	}
	return "", fmt.Errorf("unknown rating %q", s)
}

// InitialRecord returns the scheduling state for a freshly created card: due
// immediately, never reviewed.
func InitialRecord(profileID, cardID int64, now time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		ProfileID:    profileID,
		CardID:       cardID,
		Repetitions:  0,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: MinIntervalDays,
		NextReview:   now,
	}
}

// ApplyReview computes the next scheduling state after a review at now.
// Identity fields are carried over unchanged. It panics on a rating outside
// the closed set; callers must go through ParseRating for user input.
func ApplyReview(rec models.ReviewRecord, rating Rating, now time.Time) models.ReviewRecord {
	next := rec
	reps, ease, interval := rec.Repetitions, rec.EaseFactor, rec.IntervalDays

	switch rating {
	case Again:
		reps = 0
		interval = 1
		ease -= 0.2
	case Hard:
		interval = roundDays(float64(interval) * 1.2)
		ease -= 0.15
	case Good:
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = roundDays(float64(interval) * ease)
		}
		reps++
	case Easy:
		if reps == 0 {
			interval = 4
		} else {
			interval = roundDays(float64(interval) * ease * 1.3)
		}
		ease += 0.15
		reps++
	default:
		panic(fmt.Sprintf("flashcard: unknown rating %q", rating))
	}

	next.Repetitions = reps
	next.EaseFactor = math.Max(MinEaseFactor, roundEase(ease))
	next.IntervalDays = max(MinIntervalDays, interval)
	next.NextReview = now.AddDate(0, 0, next.IntervalDays)
	reviewed := now
	next.LastReviewed = &reviewed
	return next
}

func roundDays(v float64) int {
	return int(math.Round(v))
}

// roundEase trims float noise from repeated +/- steps (2.5-0.2 = 2.3, not 2.2999999999999998).
func roundEase(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

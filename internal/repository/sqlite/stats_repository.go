package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

// Thresholds for the card buckets shown on the stats page.
const (
	dueSoonWindow       = 7 * 24 * time.Hour
	masteredIntervalMin = 21
	strugglingEaseMax   = 2.0
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CardStats(ctx context.Context, profileID int64, now time.Time) (*models.CardStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching card stats: profile_id=%d", profileID)

	var s models.CardStats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE profile_id = ?`, profileID).Scan(&s.TotalCards); err != nil {
		log.Error("failed to count cards: %v", err)
		return nil, err
	}

	err := r.db.QueryRowContext(ctx, `
SELECT
    COALESCE(SUM(CASE WHEN next_review <= ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN next_review > ? AND next_review <= ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN repetitions = 0 THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN interval_days >= ? THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN ease_factor < ? THEN 1 ELSE 0 END), 0),
    COALESCE(AVG(ease_factor), 0),
    COALESCE(AVG(interval_days), 0)
FROM review_records
WHERE profile_id = ?
`, dbTime(now), dbTime(now), dbTime(now.Add(dueSoonWindow)), masteredIntervalMin, strugglingEaseMax, profileID).Scan(
		&s.CardsDue, &s.CardsDueSoon, &s.CardsNew, &s.CardsMastered, &s.CardsStruggling, &s.AvgEaseFactor, &s.AvgIntervalDays)
	if err != nil {
		log.Error("failed to query review record stats: %v", err)
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM review_history h
JOIN review_records rr ON rr.id = h.review_id
WHERE rr.profile_id = ?
`, profileID).Scan(&s.TotalReviews)
	if err != nil {
		log.Error("failed to count reviews: %v", err)
		return nil, err
	}

	log.Debug("card stats: total=%d, due=%d, reviews=%d", s.TotalCards, s.CardsDue, s.TotalReviews)
	return &s, nil
}

func (r *statsRepository) RatingStats(ctx context.Context, profileID int64) ([]models.RatingStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching rating stats: profile_id=%d", profileID)

	rows, err := r.db.QueryContext(ctx, `
SELECT h.rating, COUNT(*)
FROM review_history h
JOIN review_records rr ON rr.id = h.review_id
WHERE rr.profile_id = ?
GROUP BY h.rating
ORDER BY COUNT(*) DESC, h.rating ASC
`, profileID)
	if err != nil {
		log.Error("failed to query rating stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.RatingStat
	for rows.Next() {
		var s models.RatingStat
		if err := rows.Scan(&s.Rating, &s.Count); err != nil {
			log.Error("failed to scan rating stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) POSStats(ctx context.Context, profileID int64) ([]models.POSStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching part of speech stats: profile_id=%d", profileID)

	rows, err := r.db.QueryContext(ctx, `
SELECT pos, COUNT(*)
FROM cards
WHERE profile_id = ?
GROUP BY pos
ORDER BY COUNT(*) DESC, pos ASC
`, profileID)
	if err != nil {
		log.Error("failed to query pos stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.POSStat
	for rows.Next() {
		var s models.POSStat
		if err := rows.Scan(&s.POS, &s.TotalCards); err != nil {
			log.Error("failed to scan pos stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

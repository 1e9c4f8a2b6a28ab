package repository

import (
	"context"
	"time"

	"github.com/vytor/mnemoflash/internal/models"
)

// StatsRepository handles statistics data access
type StatsRepository interface {
	CardStats(ctx context.Context, profileID int64, now time.Time) (*models.CardStats, error)
	RatingStats(ctx context.Context, profileID int64) ([]models.RatingStat, error)
	POSStats(ctx context.Context, profileID int64) ([]models.POSStat, error)
}

package repository

import (
	"context"
	"time"

	"github.com/vytor/mnemoflash/internal/models"
)

// ReviewRepository handles review record and history data access
type ReviewRepository interface {
	Insert(ctx context.Context, rec models.ReviewRecord) (int64, error)
	Get(ctx context.Context, profileID, id int64) (*models.ReviewRecord, error)
	GetByCard(ctx context.Context, profileID, cardID int64) (*models.ReviewRecord, error)
	// Record stores the updated record and its history row in one transaction.
	Record(ctx context.Context, rec models.ReviewRecord, entry models.ReviewHistory) error
	Due(ctx context.Context, profileID int64, now time.Time, limit int) ([]models.DueCard, error)
	CountDue(ctx context.Context, profileID int64, now time.Time) (int, error)
	History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error)
}

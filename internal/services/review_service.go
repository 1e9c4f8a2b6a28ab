package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/flashcard"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

const (
	DefaultDueLimit = 10
	MaxDueLimit     = 50
)

// ReviewService serves the learn page: the due queue and rating reviews.
type ReviewService interface {
	DueReviews(ctx context.Context, profileID int64, limit int) (*models.DueQueue, error)
	RateReview(ctx context.Context, profileID, reviewID int64, rating string) (*models.ReviewRecord, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	now        func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, now: time.Now}
}

func (s *reviewService) DueReviews(ctx context.Context, profileID int64, limit int) (*models.DueQueue, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting due reviews: profile_id=%d, limit=%d", profileID, limit)

	if limit <= 0 {
		limit = DefaultDueLimit
	}
	limit = min(limit, MaxDueLimit)
	now := s.now()

	cards, err := s.reviewRepo.Due(ctx, profileID, now, limit)
	if err != nil {
		log.Error("failed to load due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	total, err := s.reviewRepo.CountDue(ctx, profileID, now)
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if cards == nil {
		cards = []models.DueCard{}
	}
	return &models.DueQueue{Total: total, Cards: cards}, nil
}

func (s *reviewService) RateReview(ctx context.Context, profileID, reviewID int64, rating string) (*models.ReviewRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("rating review: profile_id=%d, review_id=%d, rating=%s", profileID, reviewID, rating)

	r, err := flashcard.ParseRating(rating)
	if err != nil {
		return nil, errors.NewValidationError("rating", err.Error())
	}

	rec, err := s.reviewRepo.Get(ctx, profileID, reviewID)
	if err != nil {
		log.Error("failed to get review record: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rec == nil {
		return nil, errors.NewNotFoundError("review", reviewID)
	}

	now := s.now()
	updated := flashcard.ApplyReview(*rec, r, now)
	entry := models.ReviewHistory{
		ReviewID:     rec.ID,
		Rating:       string(r),
		IntervalDays: updated.IntervalDays,
		EaseFactor:   updated.EaseFactor,
		ReviewedAt:   now,
	}
	if err := s.reviewRepo.Record(ctx, updated, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("review", reviewID)
		}
		log.Error("failed to record review: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("review recorded: review_id=%d, rating=%s, next_interval=%d days", reviewID, r, updated.IntervalDays)
	return &updated, nil
}

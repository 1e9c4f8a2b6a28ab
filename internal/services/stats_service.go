package services

import (
	"context"
	"time"

	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/repository"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	GetSummary(ctx context.Context, profileID int64) (*models.StatsSummary, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	now       func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo, now: time.Now}
}

func (s *statsService) GetSummary(ctx context.Context, profileID int64) (*models.StatsSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting stats summary: profile_id=%d", profileID)

	cards, err := s.statsRepo.CardStats(ctx, profileID, s.now())
	if err != nil {
		log.Error("failed to get card stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	ratings, err := s.statsRepo.RatingStats(ctx, profileID)
	if err != nil {
		log.Error("failed to get rating stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	byPOS, err := s.statsRepo.POSStats(ctx, profileID)
	if err != nil {
		log.Error("failed to get part of speech stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	summary := &models.StatsSummary{Cards: *cards, Ratings: ratings, ByPOS: byPOS}
	if summary.Ratings == nil {
		summary.Ratings = []models.RatingStat{}
	}
	if summary.ByPOS == nil {
		summary.ByPOS = []models.POSStat{}
	}
	return summary, nil
}

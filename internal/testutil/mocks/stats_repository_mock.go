package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) CardStats(ctx context.Context, profileID int64, now time.Time) (*models.CardStats, error) {
	args := m.Called(ctx, profileID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardStats), args.Error(1)
}

func (m *MockStatsRepository) RatingStats(ctx context.Context, profileID int64) ([]models.RatingStat, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingStat), args.Error(1)
}

func (m *MockStatsRepository) POSStats(ctx context.Context, profileID int64) ([]models.POSStat, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.POSStat), args.Error(1)
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/models"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Insert(ctx context.Context, rec models.ReviewRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) Get(ctx context.Context, profileID, id int64) (*models.ReviewRecord, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewRecord), args.Error(1)
}

func (m *MockReviewRepository) GetByCard(ctx context.Context, profileID, cardID int64) (*models.ReviewRecord, error) {
	args := m.Called(ctx, profileID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewRecord), args.Error(1)
}

func (m *MockReviewRepository) Record(ctx context.Context, rec models.ReviewRecord, entry models.ReviewHistory) error {
	args := m.Called(ctx, rec, entry)
	return args.Error(0)
}

func (m *MockReviewRepository) Due(ctx context.Context, profileID int64, now time.Time, limit int) ([]models.DueCard, error) {
	args := m.Called(ctx, profileID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DueCard), args.Error(1)
}

func (m *MockReviewRepository) CountDue(ctx context.Context, profileID int64, now time.Time) (int, error) {
	args := m.Called(ctx, profileID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) History(ctx context.Context, reviewID int64) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}

package services

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mnemoflash/internal/models"
	"github.com/vytor/mnemoflash/internal/testutil/mocks"
)

func newTestReviewService(repo *mocks.MockReviewRepository) *reviewService {
	svc := NewReviewService(repo).(*reviewService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestReviewService_DueReviews(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default", 0, DefaultDueLimit},
		{"explicit", 5, 5},
		{"capped", 500, MaxDueLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockReviewRepository)
			repo.On("Due", mock.Anything, int64(1), testNow, tt.wantLimit).Return(nil, nil)
			repo.On("CountDue", mock.Anything, int64(1), testNow).Return(0, nil)

			queue, err := newTestReviewService(repo).DueReviews(context.Background(), 1, tt.limit)
			require.NoError(t, err)
			assert.Zero(t, queue.Total)
			assert.NotNil(t, queue.Cards)
			repo.AssertExpectations(t)
		})
	}
}

func TestReviewService_DueReviews_TotalExceedsBatch(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	due := []models.DueCard{{Card: models.Card{ID: 1, Word: "table"}}, {Card: models.Card{ID: 2, Word: "chair"}}}
	repo.On("Due", mock.Anything, int64(1), testNow, 2).Return(due, nil)
	repo.On("CountDue", mock.Anything, int64(1), testNow).Return(14, nil)

	queue, err := newTestReviewService(repo).DueReviews(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 14, queue.Total)
	assert.Len(t, queue.Cards, 2)
}

func TestReviewService_RateReview(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	rec := &models.ReviewRecord{ID: 3, ProfileID: 1, CardID: 7, EaseFactor: 2.5, IntervalDays: 1, NextReview: testNow}
	repo.On("Get", mock.Anything, int64(1), int64(3)).Return(rec, nil)
	repo.On("Record", mock.Anything,
		mock.MatchedBy(func(r models.ReviewRecord) bool {
			return r.ID == 3 && r.Repetitions == 1 && r.IntervalDays == 1 && r.NextReview.Equal(testNow.AddDate(0, 0, 1))
		}),
		models.ReviewHistory{ReviewID: 3, Rating: "good", IntervalDays: 1, EaseFactor: 2.5, ReviewedAt: testNow},
	).Return(nil)

	updated, err := newTestReviewService(repo).RateReview(context.Background(), 1, 3, " Good ")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Repetitions)
	require.NotNil(t, updated.LastReviewed)
	assert.Equal(t, testNow, *updated.LastReviewed)
	repo.AssertExpectations(t)
}

func TestReviewService_RateReview_Errors(t *testing.T) {
	t.Run("unknown rating", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		_, err := newTestReviewService(repo).RateReview(context.Background(), 1, 3, "perfect")
		requireAppError(t, err, http.StatusBadRequest)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other profile's record", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		repo.On("Get", mock.Anything, int64(2), int64(3)).Return(nil, nil)
		_, err := newTestReviewService(repo).RateReview(context.Background(), 2, 3, "easy")
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("record vanished before update", func(t *testing.T) {
		repo := new(mocks.MockReviewRepository)
		repo.On("Get", mock.Anything, int64(1), int64(3)).Return(&models.ReviewRecord{ID: 3, EaseFactor: 2.5, IntervalDays: 1}, nil)
		repo.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(sql.ErrNoRows)
		_, err := newTestReviewService(repo).RateReview(context.Background(), 1, 3, "again")
		requireAppError(t, err, http.StatusNotFound)
	})
}

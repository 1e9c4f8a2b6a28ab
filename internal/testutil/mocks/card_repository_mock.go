package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Insert(ctx context.Context, card models.Card) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, profileID, id int64) (*models.Card, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/models"
)

// MockCardService is a mock implementation of services.CardService
type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) CreateCard(ctx context.Context, profileID int64, card models.NewCard) (*models.Card, error) {
	args := m.Called(ctx, profileID, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardService) GetCard(ctx context.Context, profileID, id int64) (*models.Card, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Card), args.Int(1), args.Error(2)
}

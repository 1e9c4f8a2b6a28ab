package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/dictionary"
)

// MockDictionaryClient is a mock implementation of dictionary.ClientInterface
type MockDictionaryClient struct {
	mock.Mock
}

func (m *MockDictionaryClient) Pronunciation(ctx context.Context, word, language string) (dictionary.Audio, error) {
	args := m.Called(ctx, word, language)
	return args.Get(0).(dictionary.Audio), args.Error(1)
}

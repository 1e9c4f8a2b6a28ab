package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/mnemoflash/internal/models"
)

// MockGenerator is a mock implementation of pipeline.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyzeResult), args.Error(1)
}

func (m *MockGenerator) CustomizeChunking(ctx context.Context, req models.ChunkingRequest) (*models.Phonetics, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Phonetics), args.Error(1)
}

func (m *MockGenerator) GenerateAnchors(ctx context.Context, req models.AnchorsRequest) (*models.AnchorsResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnchorsResult), args.Error(1)
}

func (m *MockGenerator) BuildScene(ctx context.Context, req models.SceneRequest) (*models.SceneResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SceneResult), args.Error(1)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImageResult), args.Error(1)
}

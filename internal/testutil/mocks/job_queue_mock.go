package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue and pipeline.Runner
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Go(name string, fn func(ctx context.Context) error) error {
	args := m.Called(name, fn)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdrill/internal/models"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, state *models.RunState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockSessionRepository) Load(ctx context.Context) (*models.RunState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunState), args.Error(1)
}

func (m *MockSessionRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionRepository) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

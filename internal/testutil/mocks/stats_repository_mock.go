package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdrill/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Load(ctx context.Context) (models.StatsRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StatsRecord), args.Error(1)
}

func (m *MockStatsRepository) Save(ctx context.Context, rec models.StatsRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

package repository

import (
	"context"

	"github.com/vytor/quizdrill/internal/models"
)

// StatsRepository persists the per-question attempt counters.
type StatsRepository interface {
	// Load returns an empty record when nothing has been saved yet.
	Load(ctx context.Context) (models.StatsRecord, error)
	// Save overwrites the stored record atomically.
	Save(ctx context.Context, rec models.StatsRecord) error
}

// SessionRepository persists the snapshot of the in-progress run.
type SessionRepository interface {
	Save(ctx context.Context, state *models.RunState) error
	// Load returns nil, nil when no snapshot exists.
	Load(ctx context.Context) (*models.RunState, error)
	// Clear deletes the snapshot. Clearing a missing snapshot is not an error.
	Clear(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
}

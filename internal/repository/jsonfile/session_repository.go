package jsonfile

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/snapshot"
)

type sessionRepository struct {
	path string
}

// NewSessionRepository keeps the run snapshot in a single file. The file's
// presence is what makes a run resumable.
func NewSessionRepository(path string) repository.SessionRepository {
	return &sessionRepository{path: path}
}

func (r *sessionRepository) Save(ctx context.Context, state *models.RunState) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	data, err := snapshot.Encode(state)
	if err != nil {
		log.Error("failed to encode session: %v", err)
		return err
	}
	if err := writeFileAtomic(r.path, append(data, '\n')); err != nil {
		log.Error("failed to write session: %v", err)
		return err
	}
	log.Debug("session saved: run_id=%s, cursor=%d, round=%d", state.RunID, state.Cursor, state.Round)
	return nil
}

func (r *sessionRepository) Load(ctx context.Context) (*models.RunState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	data, ok, err := readFileIfExists(r.path)
	if err != nil {
		log.Error("failed to read session: %v", err)
		return nil, err
	}
	if !ok {
		log.Debug("no session snapshot at %s", r.path)
		return nil, nil
	}
	state, err := snapshot.Decode(data)
	if err != nil {
		log.Error("failed to decode session: %v", err)
		return nil, err
	}
	return state, nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to remove session: %v", err)
		return err
	}
	log.Debug("session cleared")
	return nil
}

func (r *sessionRepository) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session_repo").Error("failed to stat session: %v", err)
		return false, err
	}
	return true, nil
}

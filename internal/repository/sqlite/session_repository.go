package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/snapshot"
)

// sessionRowID pins the single snapshot row.
const sessionRowID = 1

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, state *models.RunState) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	data, err := snapshot.Encode(state)
	if err != nil {
		log.Error("failed to encode session: %v", err)
		return err
	}

	query, args, err := sqlBuilder.Insert("sessions").
		Columns("id", "run_id", "snapshot").
		Values(sessionRowID, state.RunID, string(data)).
		Suffix("ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id, snapshot = excluded.snapshot, saved_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save session: %v", err)
		return err
	}
	log.Debug("session saved: run_id=%s, cursor=%d, round=%d", state.RunID, state.Cursor, state.Round)
	return nil
}

func (r *sessionRepository) Load(ctx context.Context) (*models.RunState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := sqlBuilder.Select("snapshot").
		From("sessions").
		Where(squirrel.Eq{"id": sessionRowID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var data string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no session snapshot stored")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load session: %v", err)
		return nil, err
	}

	state, err := snapshot.Decode([]byte(data))
	if err != nil {
		log.Error("failed to decode session: %v", err)
		return nil, err
	}
	return state, nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := sqlBuilder.Delete("sessions").Where(squirrel.Eq{"id": sessionRowID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to clear session: %v", err)
		return err
	}
	log.Debug("session cleared")
	return nil
}

func (r *sessionRepository) Exists(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionRowID).Scan(&count)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session_repo").Error("failed to check session: %v", err)
		return false, err
	}
	return count > 0, nil
}

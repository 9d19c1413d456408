package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Load(ctx context.Context) (models.StatsRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading stats")

	query, args, err := sqlBuilder.Select("question_id", "total", "correct", "wrong").
		From("question_stats").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return models.NewStatsRecord(), err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query stats: %v", err)
		return models.NewStatsRecord(), err
	}
	defer rows.Close()

	rec := models.NewStatsRecord()
	for rows.Next() {
		var id string
		var st models.QuestionStat
		if err := rows.Scan(&id, &st.Total, &st.Correct, &st.Wrong); err != nil {
			log.Error("failed to scan stats row: %v", err)
			return models.NewStatsRecord(), err
		}
		rec.Questions[models.QuestionID(id)] = st
	}
	if err := rows.Err(); err != nil {
		return models.NewStatsRecord(), err
	}

	var duration int
	err = r.db.QueryRowContext(ctx, `SELECT value FROM stats_meta WHERE key = ?`, models.LatestDurationKey).Scan(&duration)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		log.Error("failed to read latest duration: %v", err)
		return models.NewStatsRecord(), err
	default:
		rec.LatestDuration = &duration
	}

	log.Debug("loaded stats for %d questions", len(rec.Questions))
	return rec, nil
}

// Save replaces every stored row inside one transaction.
func (r *statsRepository) Save(ctx context.Context, rec models.StatsRecord) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("saving stats for %d questions", len(rec.Questions))

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := execBuilder(ctx, tx, sqlBuilder.Delete("question_stats")); err != nil {
			return err
		}
		if len(rec.Questions) > 0 {
			insert := sqlBuilder.Insert("question_stats").Columns("question_id", "total", "correct", "wrong")
			for id, st := range rec.Questions {
				insert = insert.Values(string(id), st.Total, st.Correct, st.Wrong)
			}
			if err := execBuilder(ctx, tx, insert); err != nil {
				return err
			}
		}

		if rec.LatestDuration == nil {
			return execBuilder(ctx, tx, sqlBuilder.Delete("stats_meta").
				Where(squirrel.Eq{"key": models.LatestDurationKey}))
		}
		return execBuilder(ctx, tx, sqlBuilder.Insert("stats_meta").
			Columns("key", "value").
			Values(models.LatestDurationKey, *rec.LatestDuration).
			Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value"))
	})
	if err != nil {
		log.Error("failed to save stats: %v", err)
		return err
	}
	return nil
}

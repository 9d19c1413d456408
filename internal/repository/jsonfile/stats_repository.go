package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
)

type statsRepository struct {
	path string
}

// NewStatsRepository stores stats as a flat JSON object keyed by question id,
// with the latest run duration under models.LatestDurationKey.
func NewStatsRepository(path string) repository.StatsRepository {
	return &statsRepository{path: path}
}

func (r *statsRepository) Load(ctx context.Context) (models.StatsRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading stats: %s", r.path)

	data, ok, err := readFileIfExists(r.path)
	if err != nil {
		log.Error("failed to read stats: %v", err)
		return models.NewStatsRecord(), err
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		log.Debug("no stats file, starting empty")
		return models.NewStatsRecord(), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error("failed to decode stats: %v", err)
		return models.NewStatsRecord(), fmt.Errorf("decode stats %s: %w", r.path, err)
	}

	rec := models.NewStatsRecord()
	for key, value := range raw {
		if key == models.LatestDurationKey {
			var d int
			if err := json.Unmarshal(value, &d); err != nil {
				return models.NewStatsRecord(), fmt.Errorf("decode %s: %w", key, err)
			}
			if d < 0 {
				return models.NewStatsRecord(), fmt.Errorf("decode %s: negative duration %d", key, d)
			}
			rec.LatestDuration = &d
			continue
		}
		var st models.QuestionStat
		if err := json.Unmarshal(value, &st); err != nil {
			return models.NewStatsRecord(), fmt.Errorf("decode stats for %s: %w", key, err)
		}
		if err := st.Check(); err != nil {
			log.Error("invalid stats for question %s: %v", key, err)
			return models.NewStatsRecord(), fmt.Errorf("stats for %s: %w", key, err)
		}
		rec.Questions[models.QuestionID(key)] = st
	}
	log.Debug("loaded stats for %d questions", len(rec.Questions))
	return rec, nil
}

func (r *statsRepository) Save(ctx context.Context, rec models.StatsRecord) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	out := make(map[string]any, len(rec.Questions)+1)
	for id, st := range rec.Questions {
		out[string(id)] = st
	}
	if rec.LatestDuration != nil {
		out[models.LatestDurationKey] = *rec.LatestDuration
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Error("failed to encode stats: %v", err)
		return err
	}
	if err := writeFileAtomic(r.path, append(data, '\n')); err != nil {
		log.Error("failed to write stats: %v", err)
		return err
	}
	log.Debug("stats saved: %d questions", len(rec.Questions))
	return nil
}
